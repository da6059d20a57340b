// Package requests turns the current cart into a food request.
package requests

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	"github.com/angelmondragon/foodbank-client/internal/cart"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

const (
	notAuthenticatedMessage = "Please log in to submit a request"
	emptyCartMessage        = "Your cart is empty"
	submitFailedMessage     = "Failed to submit request"
	listFailedMessage       = "Failed to load your requests"
	getFailedMessage        = "Failed to load request"
)

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

type cartStore interface {
	Snapshot() cart.State
	Clear(ctx context.Context) (cart.Result, error)
}

// ServiceParams groups dependencies for the request service.
type ServiceParams struct {
	Client transport
	Cart   cartStore
	Logger *logger.Logger
}

// Service submits and reads the user's food requests.
type Service interface {
	SubmitFromCart(ctx context.Context, details Details) (*FoodRequest, error)
	Mine(ctx context.Context) ([]FoodRequest, error)
	Get(ctx context.Context, id string) (*FoodRequest, error)
}

type service struct {
	client transport
	cart   cartStore
	logg   *logger.Logger
}

// NewService builds a request service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: params.Client, cart: params.Cart, logg: logg}, nil
}

// SubmitFromCart posts the cart's items with details, then empties the cart. A failure
// to clear the cart afterwards does not undo the submission.
func (s *service) SubmitFromCart(ctx context.Context, details Details) (*FoodRequest, error) {
	snap := s.cart.Snapshot()
	if !snap.Authenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, notAuthenticatedMessage)
	}
	details.PreferredPickupDate = strings.TrimSpace(details.PreferredPickupDate)
	if err := validate.Struct(details); err != nil {
		return nil, err
	}
	if snap.Cart.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}

	body := submitRequest{Details: details, Items: make([]Item, 0, len(snap.Cart.Items))}
	for _, line := range snap.Cart.Items {
		body.Items = append(body.Items, Item{
			ItemName:        line.ItemName,
			Quantity:        line.Quantity,
			DietaryCategory: line.DietaryCategory,
		})
	}

	var out FoodRequest
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "requests.submit",
		Method: http.MethodPost,
		Path:   "/food-requests",
		Body:   body,
		Auth:   true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, submitFailedMessage)
	}

	if _, err := s.cart.Clear(ctx); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "requests.submit.clear_cart_failed")
	}
	s.logg.Info(s.logg.WithField(ctx, "food_request_id", out.ID), "requests.submit.success")
	return &out, nil
}

func (s *service) Mine(ctx context.Context) ([]FoodRequest, error) {
	if !s.cart.Snapshot().Authenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, notAuthenticatedMessage)
	}
	var out []FoodRequest
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "requests.mine",
		Path: "/food-requests/my-requests",
		Auth: true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, listFailedMessage)
	}
	if out == nil {
		out = []FoodRequest{}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*FoodRequest, error) {
	if !s.cart.Snapshot().Authenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, notAuthenticatedMessage)
	}
	id = strings.TrimSpace(id)
	if err := validate.Var("id", id, "required"); err != nil {
		return nil, err
	}
	var out FoodRequest
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "requests.get",
		Path: "/food-requests/" + url.PathEscape(id),
		Auth: true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, getFailedMessage)
	}
	return &out, nil
}
