package fakeapi

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// handleCreateVolunteer registers the caller unless the body names another user.
// New volunteers wait for approval.
func (s *Server) handleCreateVolunteer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reg volunteers.Registration
	if err := validate.DecodeJSON(r.Body, &reg); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	userID := strings.TrimSpace(reg.UserID)
	if userID == "" {
		userID = userIDFromContext(ctx)
	}
	v := volunteers.Volunteer{
		ID:        newID(),
		UserID:    userID,
		Status:    enums.VolunteerStatusPending.String(),
		CreatedAt: s.now(),
	}
	applyRegistration(&v, reg)
	if err := s.store.insertVolunteer(v); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: v, Message: "Volunteer registered successfully"})
}

func (s *Server) handleUpdateVolunteer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reg volunteers.Registration
	if err := validate.DecodeJSON(r.Body, &reg); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	updated, ok := s.store.mutateVolunteer(chi.URLParam(r, "volunteerID"), func(v *volunteers.Volunteer) {
		applyRegistration(v, reg)
	})
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer not found"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Volunteer updated successfully"})
}

func (s *Server) handleVolunteerStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body statusBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	status, err := enums.ParseVolunteerStatus(body.Status)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid volunteer status"))
		return
	}
	updated, ok := s.store.mutateVolunteer(chi.URLParam(r, "volunteerID"), func(v *volunteers.Volunteer) {
		v.Status = status.String()
	})
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer not found"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Volunteer status updated"})
}

func (s *Server) handleDeleteVolunteer(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteVolunteer(chi.URLParam(r, "volunteerID")) {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer not found"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Volunteer deleted successfully"})
}

func (s *Server) handleGetVolunteer(w http.ResponseWriter, r *http.Request) {
	v, ok := s.store.volunteerByID(chi.URLParam(r, "volunteerID"))
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer not found"))
		return
	}
	writeSuccess(w, v)
}

func (s *Server) handleFoodbankVolunteers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	skill := strings.TrimSpace(q.Get("skill"))
	writeSuccess(w, s.foodbankVolunteers(chi.URLParam(r, "foodbankID"), func(v volunteers.Volunteer) bool {
		return (status == "" || v.Status == status) && (skill == "" || hasSkill(v, skill))
	}))
}

// handleAvailableVolunteers lists active volunteers free on the given day and slot.
func (s *Server) handleAvailableVolunteers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := strings.ToLower(strings.TrimSpace(q.Get("day_of_week")))
	slot := strings.ToLower(strings.TrimSpace(q.Get("shift_time")))
	if day == "" || slot == "" {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "day_of_week and shift_time are required"))
		return
	}
	writeSuccess(w, s.foodbankVolunteers(q.Get("foodbank_id"), func(v volunteers.Volunteer) bool {
		return v.Status == enums.VolunteerStatusActive.String() && v.Availability.Works(day, slot)
	}))
}

func (s *Server) handleVolunteerStats(w http.ResponseWriter, r *http.Request) {
	stats := volunteers.Stats{BySkill: map[string]int{}}
	for _, v := range s.foodbankVolunteers(chi.URLParam(r, "foodbankID"), func(volunteers.Volunteer) bool { return true }) {
		stats.Total++
		stats.TotalHours += v.TotalHours
		switch enums.VolunteerStatus(v.Status) {
		case enums.VolunteerStatusActive:
			stats.Active++
		case enums.VolunteerStatusPending:
			stats.Pending++
		case enums.VolunteerStatusInactive:
			stats.Inactive++
		}
		for _, skill := range v.Skills {
			stats.BySkill[strings.ToLower(skill.SkillName)]++
		}
	}
	writeSuccess(w, stats)
}

func (s *Server) foodbankVolunteers(foodbankID string, match func(volunteers.Volunteer) bool) []volunteers.Volunteer {
	out := []volunteers.Volunteer{}
	for _, v := range s.store.volunteersSnapshot() {
		if v.FoodbankID == foodbankID && match(v) {
			out = append(out, v)
		}
	}
	return out
}

func applyRegistration(v *volunteers.Volunteer, reg volunteers.Registration) {
	v.FoodbankID = strings.TrimSpace(reg.FoodbankID)
	v.Skills = append([]volunteers.Skill{}, reg.Skills...)
	v.Availability = reg.Availability
	if v.Availability.MaxHoursPerWeek == 0 {
		v.Availability.MaxHoursPerWeek = volunteers.DefaultMaxHoursPerWeek
	}
	v.EmergencyContact = reg.EmergencyContact
	v.Notes = reg.Notes
}

func hasSkill(v volunteers.Volunteer, skill string) bool {
	for _, s := range v.Skills {
		if strings.EqualFold(s.SkillName, skill) {
			return true
		}
	}
	return false
}
