package requests

import "time"

// Status is a food request's review state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

// Details are the recipient-supplied fields of a request.
type Details struct {
	PreferredPickupDate string `json:"preferredPickupDate" validate:"required,datetime=2006-01-02"`
	PreferredPickupTime string `json:"preferredPickupTime,omitempty"`
	SpecialInstructions string `json:"specialInstructions,omitempty" validate:"max=500"`
	DietaryRestrictions string `json:"dietaryRestrictions,omitempty" validate:"max=500"`
	Allergies           string `json:"allergies,omitempty" validate:"max=500"`
}

// Item is one requested line.
type Item struct {
	ItemName        string `json:"item_name"`
	Quantity        int    `json:"quantity"`
	DietaryCategory string `json:"dietary_category,omitempty"`
}

// FoodRequest is a submitted request as returned by the API.
type FoodRequest struct {
	ID                  string     `json:"_id"`
	Items               []Item     `json:"items"`
	Status              Status     `json:"status"`
	PickupDate          string     `json:"pickup_date,omitempty"`
	PickupTime          string     `json:"pickup_time,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	DietaryRestrictions string     `json:"dietary_restrictions,omitempty"`
	Allergies           string     `json:"allergies,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	RequestDate         time.Time  `json:"request_date"`
	FulfilledAt         *time.Time `json:"fulfilled_at,omitempty"`
}

type submitRequest struct {
	Items []Item `json:"items"`
	Details
}
