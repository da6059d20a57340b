package wishlist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

const (
	notAuthenticatedMessage = "Please log in to manage wishlists"
	listFailedMessage       = "Failed to load wishlists"
	createFailedMessage     = "Failed to create wishlist"
	loadFailedMessage       = "Failed to load wishlist to cart"
	deleteFailedMessage     = "Failed to delete wishlist"
)

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

// cartStore is the slice of the cart store wishlists depend on: the session gate
// and re-hydration after a wishlist lands in the cart.
type cartStore interface {
	Authenticated() bool
	Load(ctx context.Context) error
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Client transport
	Cart   cartStore
	Logger *logger.Logger
}

// Service exposes wishlist management for the signed-in user.
type Service interface {
	List(ctx context.Context) ([]Wishlist, error)
	Create(ctx context.Context, name, description string, items []types.CartItem) (*Wishlist, error)
	LoadToCart(ctx context.Context, id string) (LoadResult, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	client transport
	cart   cartStore
	logg   *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
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
	return &service{
		client: params.Client,
		cart:   params.Cart,
		logg:   logg,
	}, nil
}

// List returns the user's wishlists, newest first as ordered by the server.
func (s *service) List(ctx context.Context) ([]Wishlist, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}
	var out []Wishlist
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "wishlist.list",
		Path: "/wishlists",
		Auth: true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, listFailedMessage)
	}
	if out == nil {
		out = []Wishlist{}
	}
	return out, nil
}

// Create stores a new wishlist from the given items.
func (s *service) Create(ctx context.Context, name, description string, items []types.CartItem) (*Wishlist, error) {
	req := createRequest{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Items:       items,
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.ensureAuthenticated(); err != nil {
		return nil, err
	}
	if req.Items == nil {
		req.Items = []types.CartItem{}
	}

	var out Wishlist
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "wishlist.create",
		Method: http.MethodPost,
		Path:   "/wishlists",
		Body:   req,
		Auth:   true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, createFailedMessage)
	}
	return &out, nil
}

// LoadToCart copies the wishlist into the cart and re-hydrates the cart store.
// A failed re-hydration is reflected in the cart store's error state, not here.
func (s *service) LoadToCart(ctx context.Context, id string) (LoadResult, error) {
	if err := s.ensureAuthenticated(); err != nil {
		return LoadResult{}, err
	}
	id = strings.TrimSpace(id)
	if err := validate.Var("wishlist_id", id, "required"); err != nil {
		return LoadResult{}, err
	}

	var out LoadResult
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "wishlist.load_to_cart",
		Method: http.MethodPost,
		Path:   "/wishlists/" + url.PathEscape(id) + "/load-to-cart",
		Auth:   true,
	}, &out)
	if err != nil {
		return LoadResult{}, apiclient.Failure(env, err, loadFailedMessage)
	}

	if loadErr := s.cart.Load(ctx); loadErr != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(loadErr).Fields()), "wishlist.load_to_cart.hydrate_failed")
	}
	return out, nil
}

// Delete removes a wishlist.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.ensureAuthenticated(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if err := validate.Var("wishlist_id", id, "required"); err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "wishlist.delete",
		Method: http.MethodDelete,
		Path:   "/wishlists/" + url.PathEscape(id),
		Auth:   true,
	}, nil)
	return apiclient.Failure(env, err, deleteFailedMessage)
}

func (s *service) ensureAuthenticated() error {
	if !s.cart.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, notAuthenticatedMessage)
	}
	return nil
}
