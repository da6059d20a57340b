package enums

import (
	"fmt"
	"strings"
)

// ShiftStatus is the publication state of a volunteer shift.
type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
	ShiftStatusActive    ShiftStatus = "active"
	ShiftStatusCancelled ShiftStatus = "cancelled"
	ShiftStatusCompleted ShiftStatus = "completed"
)

var validShiftStatuses = []ShiftStatus{
	ShiftStatusDraft,
	ShiftStatusPublished,
	ShiftStatusActive,
	ShiftStatusCancelled,
	ShiftStatusCompleted,
}

// String implements fmt.Stringer.
func (s ShiftStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShiftStatus.
func (s ShiftStatus) IsValid() bool {
	for _, candidate := range validShiftStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OpenForSignup reports whether volunteers may still be assigned.
func (s ShiftStatus) OpenForSignup() bool {
	return s == ShiftStatusPublished || s == ShiftStatusActive
}

// ParseShiftStatus converts raw input into a ShiftStatus.
func ParseShiftStatus(value string) (ShiftStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validShiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shift status %q", value)
}
