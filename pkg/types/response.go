package types

import "encoding/json"

// Envelope is the response shape every food-bank API endpoint uses.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Token      string          `json:"token,omitempty"`
	User       json.RawMessage `json:"user,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Pagination accompanies list endpoints.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
