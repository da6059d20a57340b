package fakeapi

import (
	"net/http"

	"github.com/angelmondragon/foodbank-client/internal/requests"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

type submitRequestBody struct {
	Items []requests.Item `json:"items" validate:"required,min=1,dive"`
	requests.Details
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body submitRequestBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	for _, item := range body.Items {
		if item.ItemName == "" || item.Quantity < 1 {
			writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Each item needs a name and a positive quantity"))
			return
		}
	}

	req := requests.FoodRequest{
		ID:                  newID(),
		Items:               body.Items,
		Status:              requests.StatusPending,
		PickupDate:          body.PreferredPickupDate,
		PickupTime:          body.PreferredPickupTime,
		SpecialInstructions: body.SpecialInstructions,
		DietaryRestrictions: body.DietaryRestrictions,
		Allergies:           body.Allergies,
		RequestDate:         s.now(),
	}
	s.store.addRequest(userIDFromContext(ctx), req)
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: req, Message: "Food request submitted successfully"})
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.store.requestsFor(userIDFromContext(r.Context())))
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.store.requestByID(userIDFromContext(r.Context()), chi.URLParam(r, "requestID"))
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Food request not found"))
		return
	}
	writeSuccess(w, req)
}
