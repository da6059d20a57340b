package fakeapi

import (
	"sort"

	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
)

func (s *memStore) putShift(shift shifts.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := shift
	s.shifts[shift.ID] = &cp
}

func (s *memStore) shiftByID(id string) (shifts.Shift, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shift, ok := s.shifts[id]
	if !ok {
		return shifts.Shift{}, false
	}
	return *shift, true
}

// shiftsSnapshot returns every shift ordered by date and start time.
func (s *memStore) shiftsSnapshot() []shifts.Shift {
	s.mu.Lock()
	out := make([]shifts.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		out = append(out, *shift)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ShiftDate.Equal(out[j].ShiftDate) {
			return out[i].ShiftDate.Before(out[j].ShiftDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (s *memStore) mutateShift(id string, fn func(*shifts.Shift) error) (shifts.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shift, ok := s.shifts[id]
	if !ok {
		return shifts.Shift{}, pkgerrors.New(pkgerrors.CodeNotFound, "Shift not found")
	}
	if err := fn(shift); err != nil {
		return shifts.Shift{}, err
	}
	return *shift, nil
}

// deleteShift refuses while volunteers still hold spots on the shift.
func (s *memStore) deleteShift(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Shift not found")
	}
	for _, a := range s.assignments {
		if a.ShiftID == id && enums.AssignmentStatus(a.Status).Active() {
			return pkgerrors.New(pkgerrors.CodeConflict, "Shift has active volunteer assignments")
		}
	}
	delete(s.shifts, id)
	return nil
}

// insertVolunteer registers v unless its user already volunteers at the food bank.
func (s *memStore) insertVolunteer(v volunteers.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.volunteers {
		if existing.UserID == v.UserID && existing.FoodbankID == v.FoodbankID {
			return pkgerrors.New(pkgerrors.CodeConflict, "Volunteer already registered at this food bank")
		}
	}
	cp := v
	s.volunteers[v.ID] = &cp
	return nil
}

func (s *memStore) volunteerByID(id string) (volunteers.Volunteer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[id]
	if !ok {
		return volunteers.Volunteer{}, false
	}
	return *v, true
}

// volunteersSnapshot returns every volunteer ordered by registration time.
func (s *memStore) volunteersSnapshot() []volunteers.Volunteer {
	s.mu.Lock()
	out := make([]volunteers.Volunteer, 0, len(s.volunteers))
	for _, v := range s.volunteers {
		out = append(out, *v)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) mutateVolunteer(id string, fn func(*volunteers.Volunteer)) (volunteers.Volunteer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[id]
	if !ok {
		return volunteers.Volunteer{}, false
	}
	fn(v)
	return *v, true
}

func (s *memStore) deleteVolunteer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.volunteers[id]; !ok {
		return false
	}
	delete(s.volunteers, id)
	return true
}

// book claims a spot on the shift for the volunteer. The shift must be open for
// signup, not full and not already booked by the same volunteer.
func (s *memStore) book(a shifts.Assignment) (shifts.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.volunteers[a.VolunteerID]
	if !ok {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer not found")
	}
	shift, ok := s.shifts[a.ShiftID]
	if !ok {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeNotFound, "Shift not found")
	}
	if !enums.ShiftStatus(shift.Status).OpenForSignup() {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeConflict, "Shift is not open for signup")
	}
	if shift.Full() {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeConflict, "Shift is full")
	}
	for _, existing := range s.assignments {
		if existing.ShiftID == a.ShiftID && existing.VolunteerID == a.VolunteerID &&
			enums.AssignmentStatus(existing.Status).Active() {
			return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeConflict, "Volunteer is already assigned to this shift")
		}
	}

	if a.UserID == "" {
		a.UserID = v.UserID
	}
	a.FoodbankID = shift.FoodbankID
	if a.WorkDate == "" {
		a.WorkDate = shift.ShiftDate.Format("2006-01-02")
	}
	shift.CurrentVolunteers++
	cp := a
	s.assignments[a.ID] = &cp
	return a, nil
}

// mutateAssignment runs fn with the assignment and its shift. Terminal assignments
// cannot change. A spot is released when fn moves an active assignment to a
// cancelled or no-show state, and hours are credited to the volunteer on completion.
func (s *memStore) mutateAssignment(id string, fn func(a *shifts.Assignment, shift shifts.Shift) error) (shifts.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeNotFound, "Volunteer shift not found")
	}
	before := enums.AssignmentStatus(a.Status)
	if before.Terminal() {
		return shifts.Assignment{}, pkgerrors.New(pkgerrors.CodeConflict, "Volunteer shift is already "+a.Status)
	}
	var shift shifts.Shift
	if sh, ok := s.shifts[a.ShiftID]; ok {
		shift = *sh
	}
	if err := fn(a, shift); err != nil {
		return shifts.Assignment{}, err
	}

	after := enums.AssignmentStatus(a.Status)
	if after == enums.AssignmentStatusCancelled || after == enums.AssignmentStatusNoShow {
		if sh, ok := s.shifts[a.ShiftID]; ok && sh.CurrentVolunteers > 0 {
			sh.CurrentVolunteers--
		}
	}
	if after == enums.AssignmentStatusCompleted {
		if v, ok := s.volunteers[a.VolunteerID]; ok {
			v.TotalHours += a.HoursWorked
		}
	}
	return *a, nil
}

// assignmentsWhere returns matching assignments ordered by work date.
func (s *memStore) assignmentsWhere(match func(shifts.Assignment) bool) []shifts.Assignment {
	s.mu.Lock()
	out := []shifts.Assignment{}
	for _, a := range s.assignments {
		if match(*a) {
			out = append(out, *a)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkDate != out[j].WorkDate {
			return out[i].WorkDate < out[j].WorkDate
		}
		return out[i].AssignmentDate.Before(out[j].AssignmentDate)
	})
	return out
}
