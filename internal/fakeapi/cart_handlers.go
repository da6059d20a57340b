package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/cart"
	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

type addToCartBody struct {
	InventoryID string `json:"inventory_id" validate:"required,notblank"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
}

type updateCartBody struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type saveWishlistBody struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.store.cartFor(userIDFromContext(r.Context())))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body addToCartBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}

	now := s.now()
	updated, err := s.store.mutateCart(userIDFromContext(ctx), func(c *cart.Cart, stock map[string]*inventory.Item) error {
		item, ok := stock[body.InventoryID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Inventory item not found")
		}
		if !item.Available() {
			return pkgerrors.New(pkgerrors.CodeValidation, item.ItemName+" is out of stock")
		}
		addLine(c, *item, body.Quantity, now)
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Item added to cart"})
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lineID := chi.URLParam(r, "itemID")
	var body updateCartBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}

	updated, err := s.store.mutateCart(userIDFromContext(ctx), func(c *cart.Cart, stock map[string]*inventory.Item) error {
		idx := lineIndex(c, lineID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		if body.Quantity == 0 {
			c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
			return nil
		}
		qty := body.Quantity
		if item, ok := stock[string(c.Items[idx].InventoryID)]; ok && qty > item.Quantity {
			qty = item.Quantity
		}
		c.Items[idx].Quantity = qty
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Cart updated"})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lineID := chi.URLParam(r, "itemID")
	updated, err := s.store.mutateCart(userIDFromContext(ctx), func(c *cart.Cart, _ map[string]*inventory.Item) error {
		idx := lineIndex(c, lineID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: updated, Message: "Item removed from cart"})
}

// handleClearCart replies without a cart body; clients fall back to an empty cart.
func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, err := s.store.mutateCart(userIDFromContext(ctx), func(c *cart.Cart, _ map[string]*inventory.Item) error {
		c.Items = []types.CartItem{}
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Cart cleared"})
}

func (s *Server) handleSaveWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body saveWishlistBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	userID := userIDFromContext(ctx)
	current := s.store.cartFor(userID)
	if current.Empty() {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty"))
		return
	}

	list := wishlist.Wishlist{
		ID:          newID(),
		Name:        strings.TrimSpace(body.Name),
		Description: strings.TrimSpace(body.Description),
		Items:       current.Items,
		TotalItems:  types.CountQuantities(current.Items),
		CreatedAt:   s.now(),
	}
	s.store.addWishlist(userID, list)
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: list, Message: "Wishlist saved successfully"})
}

// addLine merges qty into an existing line for the same item, clamped to stock.
func addLine(c *cart.Cart, item inventory.Item, qty int, now time.Time) {
	for i := range c.Items {
		if string(c.Items[i].InventoryID) == item.ID {
			c.Items[i].Quantity = min(c.Items[i].Quantity+qty, item.Quantity)
			return
		}
	}
	c.Items = append(c.Items, types.CartItem{
		ID:              newID(),
		InventoryID:     types.InventoryRef(item.ID),
		ItemName:        item.ItemName,
		Category:        item.Category,
		DietaryCategory: item.DietaryCategory,
		Quantity:        min(qty, item.Quantity),
		AddedAt:         timePtr(now),
	})
}

func lineIndex(c *cart.Cart, lineID string) int {
	for i, item := range c.Items {
		if item.ID == lineID {
			return i
		}
	}
	return -1
}
