package enums

import (
	"fmt"
	"strings"
)

// AssignmentStatus is the lifecycle of one volunteer booked onto one shift.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusCheckedIn AssignmentStatus = "checked_in"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
	AssignmentStatusNoShow    AssignmentStatus = "no_show"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusAssigned,
	AssignmentStatusConfirmed,
	AssignmentStatusCheckedIn,
	AssignmentStatusCompleted,
	AssignmentStatusCancelled,
	AssignmentStatusNoShow,
}

// String implements fmt.Stringer.
func (s AssignmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (s AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Active reports whether the assignment still holds a spot on the shift.
func (s AssignmentStatus) Active() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusConfirmed, AssignmentStatusCheckedIn:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s AssignmentStatus) Terminal() bool {
	switch s {
	case AssignmentStatusCompleted, AssignmentStatusCancelled, AssignmentStatusNoShow:
		return true
	}
	return false
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
