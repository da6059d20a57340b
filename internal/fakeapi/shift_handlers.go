package fakeapi

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type statusBody struct {
	Status string `json:"status" validate:"required,notblank"`
}

func (s *Server) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in shifts.Input
	if err := validate.DecodeJSON(r.Body, &in); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	shift := shifts.Shift{ID: newID(), Status: enums.ShiftStatusDraft.String()}
	if err := applyShiftInput(&shift, in); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	s.store.putShift(shift)
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: shift, Message: "Shift created successfully"})
}

func (s *Server) handleUpdateShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in shifts.Input
	if err := validate.DecodeJSON(r.Body, &in); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	updated, err := s.store.mutateShift(chi.URLParam(r, "shiftID"), func(shift *shifts.Shift) error {
		if in.Capacity < shift.CurrentVolunteers {
			return pkgerrors.New(pkgerrors.CodeConflict, "Capacity cannot be below the number of assigned volunteers")
		}
		return applyShiftInput(shift, in)
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Shift updated successfully"})
}

func (s *Server) handleShiftStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body statusBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	status, err := enums.ParseShiftStatus(body.Status)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid shift status"))
		return
	}
	updated, err := s.store.mutateShift(chi.URLParam(r, "shiftID"), func(shift *shifts.Shift) error {
		shift.Status = status.String()
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Shift status updated"})
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteShift(chi.URLParam(r, "shiftID")); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Shift deleted successfully"})
}

func (s *Server) handleGetShift(w http.ResponseWriter, r *http.Request) {
	shift, ok := s.store.shiftByID(chi.URLParam(r, "shiftID"))
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Shift not found"))
		return
	}
	writeSuccess(w, shift)
}

func (s *Server) handleFoodbankShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	category := strings.TrimSpace(q.Get("activity_category"))
	writeSuccess(w, s.foodbankShifts(chi.URLParam(r, "foodbankID"), func(shift shifts.Shift) bool {
		return (status == "" || shift.Status == status) &&
			(category == "" || strings.EqualFold(shift.ActivityCategory, category))
	}))
}

func (s *Server) handleUpcomingShifts(w http.ResponseWriter, r *http.Request) {
	today := startOfDay(s.now())
	writeSuccess(w, s.foodbankShifts(chi.URLParam(r, "foodbankID"), func(shift shifts.Shift) bool {
		return upcoming(shift, today)
	}))
}

// handleAvailableShifts lists upcoming shifts that still take signups.
func (s *Server) handleAvailableShifts(w http.ResponseWriter, r *http.Request) {
	today := startOfDay(s.now())
	writeSuccess(w, s.foodbankShifts(chi.URLParam(r, "foodbankID"), func(shift shifts.Shift) bool {
		return upcoming(shift, today) && enums.ShiftStatus(shift.Status).OpenForSignup() && !shift.Full()
	}))
}

func (s *Server) handleShiftsInRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := dateRange(r, true)
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccess(w, s.foodbankShifts(chi.URLParam(r, "foodbankID"), func(shift shifts.Shift) bool {
		day := shift.ShiftDate.Format(dateLayout)
		return day >= start && day <= end
	}))
}

func (s *Server) foodbankShifts(foodbankID string, match func(shifts.Shift) bool) []shifts.Shift {
	out := []shifts.Shift{}
	for _, shift := range s.store.shiftsSnapshot() {
		if shift.FoodbankID == foodbankID && match(shift) {
			out = append(out, shift)
		}
	}
	return out
}

func applyShiftInput(shift *shifts.Shift, in shifts.Input) error {
	day, err := time.Parse(dateLayout, in.ShiftDate)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid shift date")
	}
	hours, err := hoursBetween(in.StartTime, in.EndTime)
	if err != nil {
		return err
	}
	if hours <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "End time must be after start time")
	}
	shift.FoodbankID = strings.TrimSpace(in.FoodbankID)
	shift.Title = strings.TrimSpace(in.Title)
	shift.Description = in.Description
	shift.ActivityCategory = in.ActivityCategory
	shift.Location = in.Location
	shift.ShiftDate = day
	shift.StartTime = in.StartTime
	shift.EndTime = in.EndTime
	shift.DurationHours = hours
	shift.Capacity = in.Capacity
	if in.Status != "" {
		shift.Status = in.Status
	}
	return nil
}

// hoursBetween returns the HH:MM interval in hours rounded to two places.
func hoursBetween(start, end string) (float64, error) {
	from, err := time.Parse(clockLayout, start)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid start time")
	}
	to, err := time.Parse(clockLayout, end)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid end time")
	}
	return math.Round(to.Sub(from).Hours()*100) / 100, nil
}

func upcoming(shift shifts.Shift, today time.Time) bool {
	switch enums.ShiftStatus(shift.Status) {
	case enums.ShiftStatusCancelled, enums.ShiftStatusCompleted:
		return false
	}
	return !shift.ShiftDate.Before(today)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateRange reads start_date and end_date. Both are needed when required is set;
// otherwise both or neither.
func dateRange(r *http.Request, required bool) (string, string, error) {
	q := r.URL.Query()
	start, end := strings.TrimSpace(q.Get("start_date")), strings.TrimSpace(q.Get("end_date"))
	if start == "" && end == "" && !required {
		return "", "", nil
	}
	if start == "" || end == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "Start date and end date are required")
	}
	for _, v := range []string{start, end} {
		if _, err := time.Parse(dateLayout, v); err != nil {
			return "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Dates must be YYYY-MM-DD")
		}
	}
	return start, end, nil
}
