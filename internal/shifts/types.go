package shifts

import (
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

// Shift is a scheduled block of volunteer work at one food bank.
type Shift struct {
	ID                string    `json:"_id"`
	FoodbankID        string    `json:"foodbank_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	ActivityCategory  string    `json:"activity_category,omitempty"`
	Location          string    `json:"location,omitempty"`
	ShiftDate         time.Time `json:"shift_date"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	DurationHours     float64   `json:"duration_hours,omitempty"`
	Capacity          int       `json:"capacity"`
	CurrentVolunteers int       `json:"current_volunteers"`
	Status            string    `json:"status"`
}

// SpotsLeft returns how many more volunteers the shift can take.
func (s Shift) SpotsLeft() int {
	if left := s.Capacity - s.CurrentVolunteers; left > 0 {
		return left
	}
	return 0
}

// Full reports whether the shift has no spots left.
func (s Shift) Full() bool {
	return s.SpotsLeft() == 0
}

// Input creates or replaces a shift. Dates are YYYY-MM-DD and times are HH:MM.
type Input struct {
	FoodbankID       string `json:"foodbank_id" validate:"required,notblank"`
	Title            string `json:"title" validate:"required,notblank"`
	Description      string `json:"description,omitempty" validate:"max=1000"`
	ActivityCategory string `json:"activity_category,omitempty"`
	Location         string `json:"location,omitempty"`
	ShiftDate        string `json:"shift_date" validate:"required,datetime=2006-01-02"`
	StartTime        string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime          string `json:"end_time" validate:"required,datetime=15:04"`
	Capacity         int    `json:"capacity" validate:"required,gte=1,lte=500"`
	Status           string `json:"status,omitempty" validate:"omitempty,oneof=draft published active cancelled completed"`
}

// ListFilters narrows a food bank's shift listing. Zero values are omitted.
type ListFilters struct {
	Status           string
	ActivityCategory string
}

func (f ListFilters) query() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(f.Status); v != "" {
		q.Set("status", v)
	}
	if v := strings.TrimSpace(f.ActivityCategory); v != "" {
		q.Set("activity_category", v)
	}
	return q
}

// DateRange bounds a query by work date, inclusive. Both ends or neither.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) validate() error {
	if (r.Start == "") != (r.End == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end dates must be given together")
	}
	if r.Start == "" {
		return nil
	}
	if err := validate.Var("start_date", r.Start, "datetime=2006-01-02"); err != nil {
		return err
	}
	if err := validate.Var("end_date", r.End, "datetime=2006-01-02"); err != nil {
		return err
	}
	if r.End < r.Start {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not be before start date")
	}
	return nil
}

func (r DateRange) query() url.Values {
	if r.Start == "" || r.End == "" {
		return nil
	}
	return url.Values{"start_date": {r.Start}, "end_date": {r.End}}
}

// Assignment books one volunteer onto one shift.
type Assignment struct {
	ID              string    `json:"_id"`
	VolunteerID     string    `json:"volunteer_id"`
	ShiftID         string    `json:"shift_id"`
	UserID          string    `json:"user_id,omitempty"`
	FoodbankID      string    `json:"foodbank_id,omitempty"`
	WorkDate        string    `json:"work_date"`
	Status          string    `json:"status"`
	AssignmentDate  time.Time `json:"assignment_date"`
	CheckInTime     string    `json:"check_in_time,omitempty"`
	CheckOutTime    string    `json:"check_out_time,omitempty"`
	HoursWorked     float64   `json:"hours_worked,omitempty"`
	Feedback        *Feedback `json:"feedback,omitempty"`
	CancelledReason string    `json:"cancelled_reason,omitempty"`
	CancelledBy     string    `json:"cancelled_by,omitempty"`
}

// AssignmentInput requests a booking.
type AssignmentInput struct {
	VolunteerID string `json:"volunteer_id" validate:"required,notblank"`
	ShiftID     string `json:"shift_id" validate:"required,notblank"`
	UserID      string `json:"user_id,omitempty"`
	FoodbankID  string `json:"foodbank_id,omitempty"`
	WorkDate    string `json:"work_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Feedback is left by the coordinator when a shift is completed.
type Feedback struct {
	Rating   int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comments string `json:"comments,omitempty" validate:"max=1000"`
}

// Hours summarizes completed volunteer time.
type Hours struct {
	TotalHours      float64 `json:"total_hours"`
	CompletedShifts int     `json:"completed_shifts"`
	Volunteers      int     `json:"volunteers,omitempty"`
}
