package enums

import (
	"fmt"
	"strings"
)

// VolunteerStatus tracks a volunteer registration through review.
type VolunteerStatus string

const (
	VolunteerStatusPending  VolunteerStatus = "pending"
	VolunteerStatusActive   VolunteerStatus = "active"
	VolunteerStatusInactive VolunteerStatus = "inactive"
)

var validVolunteerStatuses = []VolunteerStatus{
	VolunteerStatusPending,
	VolunteerStatusActive,
	VolunteerStatusInactive,
}

// String implements fmt.Stringer.
func (s VolunteerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VolunteerStatus.
func (s VolunteerStatus) IsValid() bool {
	for _, candidate := range validVolunteerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVolunteerStatus converts raw input into a VolunteerStatus.
func ParseVolunteerStatus(value string) (VolunteerStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validVolunteerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid volunteer status %q", value)
}
