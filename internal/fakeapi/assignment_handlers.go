package fakeapi

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

type cancelBody struct {
	CancelledReason string `json:"cancelled_reason" validate:"max=500"`
	CancelledBy     string `json:"cancelled_by"`
}

type checkInBody struct {
	CheckInTime string `json:"check_in_time" validate:"required,datetime=15:04"`
}

type checkOutBody struct {
	CheckOutTime string `json:"check_out_time" validate:"required,datetime=15:04"`
}

type completeBody struct {
	Feedback *shifts.Feedback `json:"feedback"`
}

func (s *Server) handleAssignShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in shifts.AssignmentInput
	if err := validate.DecodeJSON(r.Body, &in); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	booked, err := s.store.book(shifts.Assignment{
		ID:             newID(),
		VolunteerID:    strings.TrimSpace(in.VolunteerID),
		ShiftID:        strings.TrimSpace(in.ShiftID),
		UserID:         strings.TrimSpace(in.UserID),
		WorkDate:       in.WorkDate,
		Status:         enums.AssignmentStatusAssigned.String(),
		AssignmentDate: s.now(),
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: booked, Message: "Volunteer assigned to shift successfully"})
}

func (s *Server) handleVolunteerAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "volunteerID")
	s.writeAssignments(w, r, func(a shifts.Assignment) bool { return a.VolunteerID == id })
}

func (s *Server) handleUserAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	s.writeAssignments(w, r, func(a shifts.Assignment) bool { return a.UserID == id })
}

func (s *Server) handleShiftAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "shiftID")
	writeSuccess(w, s.store.assignmentsWhere(func(a shifts.Assignment) bool { return a.ShiftID == id }))
}

func (s *Server) writeAssignments(w http.ResponseWriter, r *http.Request, match func(shifts.Assignment) bool) {
	start, end, err := dateRange(r, false)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccess(w, s.store.assignmentsWhere(func(a shifts.Assignment) bool {
		return match(a) && inRange(a.WorkDate, start, end)
	}))
}

func (s *Server) handleAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body statusBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	status, err := enums.ParseAssignmentStatus(body.Status)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid volunteer shift status"))
		return
	}
	s.mutateAssignment(w, r, "Volunteer shift status updated", func(a *shifts.Assignment, shift shifts.Shift) error {
		if status == enums.AssignmentStatusCompleted {
			completeAssignment(a, shift, nil)
			return nil
		}
		a.Status = status.String()
		return nil
	})
}

func (s *Server) handleCancelAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body cancelBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	by := strings.TrimSpace(body.CancelledBy)
	if by == "" {
		by = userIDFromContext(ctx)
	}
	s.mutateAssignment(w, r, "Volunteer shift cancelled", func(a *shifts.Assignment, _ shifts.Shift) error {
		a.Status = enums.AssignmentStatusCancelled.String()
		a.CancelledReason = strings.TrimSpace(body.CancelledReason)
		a.CancelledBy = by
		return nil
	})
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body checkInBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	s.mutateAssignment(w, r, "Checked in successfully", func(a *shifts.Assignment, _ shifts.Shift) error {
		switch enums.AssignmentStatus(a.Status) {
		case enums.AssignmentStatusAssigned, enums.AssignmentStatusConfirmed:
		default:
			return pkgerrors.New(pkgerrors.CodeConflict, "Volunteer shift is already "+a.Status)
		}
		a.Status = enums.AssignmentStatusCheckedIn.String()
		a.CheckInTime = body.CheckInTime
		return nil
	})
}

// handleCheckOut records departure and the hours worked since check-in.
func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body checkOutBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	s.mutateAssignment(w, r, "Checked out successfully", func(a *shifts.Assignment, _ shifts.Shift) error {
		if enums.AssignmentStatus(a.Status) != enums.AssignmentStatusCheckedIn {
			return pkgerrors.New(pkgerrors.CodeConflict, "Volunteer has not checked in")
		}
		hours, err := hoursBetween(a.CheckInTime, body.CheckOutTime)
		if err != nil {
			return err
		}
		if hours < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Check-out time must be after check-in time")
		}
		a.CheckOutTime = body.CheckOutTime
		a.HoursWorked = hours
		return nil
	})
}

func (s *Server) handleCompleteAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body completeBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	s.mutateAssignment(w, r, "Volunteer shift completed", func(a *shifts.Assignment, shift shifts.Shift) error {
		completeAssignment(a, shift, body.Feedback)
		return nil
	})
}

func (s *Server) mutateAssignment(w http.ResponseWriter, r *http.Request, message string, fn func(*shifts.Assignment, shifts.Shift) error) {
	updated, err := s.store.mutateAssignment(chi.URLParam(r, "assignmentID"), fn)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: message})
}

func (s *Server) handleVolunteerHours(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "volunteerID")
	s.writeHours(w, r, func(a shifts.Assignment) bool { return a.VolunteerID == id })
}

func (s *Server) handleFoodbankHours(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "foodbankID")
	s.writeHours(w, r, func(a shifts.Assignment) bool { return a.FoodbankID == id })
}

// writeHours totals completed assignments. Volunteers counts distinct people.
func (s *Server) writeHours(w http.ResponseWriter, r *http.Request, match func(shifts.Assignment) bool) {
	start, end, err := dateRange(r, false)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	hours := shifts.Hours{}
	seen := map[string]struct{}{}
	for _, a := range s.store.assignmentsWhere(match) {
		if a.Status != enums.AssignmentStatusCompleted.String() || !inRange(a.WorkDate, start, end) {
			continue
		}
		hours.TotalHours += a.HoursWorked
		hours.CompletedShifts++
		seen[a.VolunteerID] = struct{}{}
	}
	hours.Volunteers = len(seen)
	writeSuccess(w, hours)
}

// completeAssignment falls back to the shift's scheduled length when no
// check-out recorded the hours.
func completeAssignment(a *shifts.Assignment, shift shifts.Shift, feedback *shifts.Feedback) {
	if a.HoursWorked == 0 {
		a.HoursWorked = shift.DurationHours
	}
	a.Status = enums.AssignmentStatusCompleted.String()
	if feedback != nil {
		fb := *feedback
		a.Feedback = &fb
	}
}

func inRange(day, start, end string) bool {
	if start == "" {
		return true
	}
	return day >= start && day <= end
}
