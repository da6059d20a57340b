package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	"github.com/angelmondragon/foodbank-client/pkg/types"
)

const (
	loadFailedMessage         = "Failed to load cart"
	addFailedMessage          = "Failed to add item to cart"
	updateFailedMessage       = "Failed to update cart item"
	removeFailedMessage       = "Failed to remove item from cart"
	clearFailedMessage        = "Failed to clear cart"
	saveWishlistFailedMessage = "Failed to save wishlist"
)

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

// Remote is the cart REST surface. Every mutation returns the server's full cart.
type Remote interface {
	Get(ctx context.Context) (*Cart, error)
	Add(ctx context.Context, inventoryID string, quantity int) (*Cart, string, error)
	Update(ctx context.Context, itemID string, quantity int) (*Cart, error)
	Remove(ctx context.Context, itemID string) (*Cart, error)
	Clear(ctx context.Context) (*Cart, error)
	SaveAsWishlist(ctx context.Context, name, description string) (*wishlist.Wishlist, error)
}

type remote struct {
	client transport
}

// NewRemote wraps the API client with the cart endpoints.
func NewRemote(client transport) (Remote, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	return &remote{client: client}, nil
}

type addRequest struct {
	InventoryID string `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

type saveWishlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *remote) Get(ctx context.Context) (*Cart, error) {
	return r.cartCall(ctx, apiclient.Request{Op: "cart.get", Path: "/cart", Auth: true}, loadFailedMessage)
}

func (r *remote) Add(ctx context.Context, inventoryID string, quantity int) (*Cart, string, error) {
	out := emptyCart()
	env, err := r.client.DoInto(ctx, apiclient.Request{
		Op:     "cart.add",
		Method: http.MethodPost,
		Path:   "/cart/add",
		Body:   addRequest{InventoryID: inventoryID, Quantity: quantity},
		Auth:   true,
	}, &out)
	if err != nil {
		return nil, "", apiclient.Failure(env, err, addFailedMessage)
	}
	return normalize(&out), apiclient.ServerMessage(env), nil
}

func (r *remote) Update(ctx context.Context, itemID string, quantity int) (*Cart, error) {
	return r.cartCall(ctx, apiclient.Request{
		Op:     "cart.update_item",
		Method: http.MethodPut,
		Path:   "/cart/items/" + url.PathEscape(itemID),
		Body:   updateRequest{Quantity: quantity},
		Auth:   true,
	}, updateFailedMessage)
}

func (r *remote) Remove(ctx context.Context, itemID string) (*Cart, error) {
	return r.cartCall(ctx, apiclient.Request{
		Op:     "cart.remove_item",
		Method: http.MethodDelete,
		Path:   "/cart/items/" + url.PathEscape(itemID),
		Auth:   true,
	}, removeFailedMessage)
}

// Clear empties the cart. A response without a cart is taken as the empty cart.
func (r *remote) Clear(ctx context.Context) (*Cart, error) {
	return r.cartCall(ctx, apiclient.Request{
		Op:     "cart.clear",
		Method: http.MethodDelete,
		Path:   "/cart/clear",
		Auth:   true,
	}, clearFailedMessage)
}

func (r *remote) SaveAsWishlist(ctx context.Context, name, description string) (*wishlist.Wishlist, error) {
	var out wishlist.Wishlist
	env, err := r.client.DoInto(ctx, apiclient.Request{
		Op:     "cart.save_wishlist",
		Method: http.MethodPost,
		Path:   "/cart/save-wishlist",
		Body:   saveWishlistRequest{Name: name, Description: description},
		Auth:   true,
	}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, saveWishlistFailedMessage)
	}
	return &out, nil
}

func (r *remote) cartCall(ctx context.Context, req apiclient.Request, fallback string) (*Cart, error) {
	out := emptyCart()
	env, err := r.client.DoInto(ctx, req, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	return normalize(&out), nil
}

func normalize(c *Cart) *Cart {
	if c.Items == nil {
		c.Items = []types.CartItem{}
	}
	return c
}
