package volunteers

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxHoursPerWeek is offered to new volunteers who do not say otherwise.
const DefaultMaxHoursPerWeek = 40

// Volunteer is a registered volunteer at one food bank.
type Volunteer struct {
	ID               string           `json:"_id"`
	UserID           string           `json:"user_id"`
	FoodbankID       string           `json:"foodbank_id"`
	Skills           []Skill          `json:"skills"`
	Availability     Availability     `json:"availability"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Notes            string           `json:"notes,omitempty"`
	Status           string           `json:"status"`
	TotalHours       float64          `json:"total_hours"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Skill is one self-reported skill.
type Skill struct {
	SkillName   string `json:"skill_name" validate:"required,notblank"`
	Proficiency string `json:"proficiency" validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

// Availability describes when a volunteer can work.
type Availability struct {
	DaysOfWeek      []string `json:"days_of_week" validate:"dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	PreferredShifts []string `json:"preferred_shifts" validate:"dive,oneof=morning afternoon evening"`
	MaxHoursPerWeek int      `json:"max_hours_per_week" validate:"gte=0,lte=168"`
}

// Works reports whether the volunteer is available on day for the shift time.
func (a Availability) Works(day, shiftTime string) bool {
	return contains(a.DaysOfWeek, day) && contains(a.PreferredShifts, shiftTime)
}

// EmergencyContact is who to call if something happens on shift.
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Registration creates or replaces a volunteer record. UserID defaults to the caller.
type Registration struct {
	UserID           string           `json:"user_id,omitempty"`
	FoodbankID       string           `json:"foodbank_id" validate:"required,notblank"`
	Skills           []Skill          `json:"skills" validate:"dive"`
	Availability     Availability     `json:"availability"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Notes            string           `json:"notes,omitempty" validate:"max=2000"`
}

// SignupForm is the free-form sign-up a volunteer fills in. Availability slots are
// written "Monday Morning".
type SignupForm struct {
	UserID           string
	FoodbankID       string
	Skills           []string
	Availability     []string
	EmergencyContact string
	EmergencyPhone   string
	Experience       string
	Motivation       string
}

// Registration converts the form into the API's registration shape. Skills start at
// beginner and notes record experience and motivation.
func (f SignupForm) Registration() Registration {
	reg := Registration{
		UserID:     strings.TrimSpace(f.UserID),
		FoodbankID: strings.TrimSpace(f.FoodbankID),
		Skills:     make([]Skill, 0, len(f.Skills)),
		Availability: Availability{
			DaysOfWeek:      []string{},
			PreferredShifts: []string{},
			MaxHoursPerWeek: DefaultMaxHoursPerWeek,
		},
		EmergencyContact: EmergencyContact{
			Name:         strings.TrimSpace(f.EmergencyContact),
			Phone:        strings.TrimSpace(f.EmergencyPhone),
			Relationship: "Emergency Contact",
		},
		Notes: fmt.Sprintf("Registration notes: Experience: %s. Motivation: %s.",
			orNone(f.Experience), orNone(f.Motivation)),
	}
	for _, skill := range f.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			reg.Skills = append(reg.Skills, Skill{SkillName: skill, Proficiency: "beginner"})
		}
	}
	for _, slot := range f.Availability {
		parts := strings.Fields(strings.ToLower(slot))
		if len(parts) != 2 {
			continue
		}
		if !contains(reg.Availability.DaysOfWeek, parts[0]) {
			reg.Availability.DaysOfWeek = append(reg.Availability.DaysOfWeek, parts[0])
		}
		if !contains(reg.Availability.PreferredShifts, parts[1]) {
			reg.Availability.PreferredShifts = append(reg.Availability.PreferredShifts, parts[1])
		}
	}
	return reg
}

// ListFilters narrows a food bank's volunteer listing. Zero values are omitted.
type ListFilters struct {
	Status string
	Skill  string
}

// Stats summarizes a food bank's volunteers.
type Stats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Pending    int            `json:"pending"`
	Inactive   int            `json:"inactive"`
	TotalHours float64        `json:"total_hours"`
	BySkill    map[string]int `json:"by_skill,omitempty"`
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return "None provided"
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
