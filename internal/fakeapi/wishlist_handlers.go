package fakeapi

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/cart"
	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
	"github.com/go-chi/chi/v5"
)

type createWishlistBody struct {
	Name        string           `json:"name" validate:"required,notblank"`
	Description string           `json:"description"`
	Items       []types.CartItem `json:"items" validate:"dive"`
}

type loadToCartData struct {
	wishlist.LoadResult
	Cart cart.Cart `json:"cart"`
}

func (s *Server) handleListWishlists(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.store.wishlistsFor(userIDFromContext(r.Context())))
}

func (s *Server) handleCreateWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body createWishlistBody
	if err := validate.DecodeJSON(r.Body, &body); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	items := make([]types.CartItem, 0, len(body.Items))
	for _, item := range body.Items {
		if item.InventoryID == "" || item.Quantity < 1 {
			continue
		}
		if item.ID == "" {
			item.ID = newID()
		}
		items = append(items, item)
	}

	list := wishlist.Wishlist{
		ID:          newID(),
		Name:        strings.TrimSpace(body.Name),
		Description: strings.TrimSpace(body.Description),
		Items:       items,
		TotalItems:  types.CountQuantities(items),
		CreatedAt:   s.now(),
	}
	s.store.addWishlist(userIDFromContext(ctx), list)
	writeSuccessStatus(w, http.StatusCreated, envelope{Data: list, Message: "Wishlist created successfully"})
}

// handleLoadWishlist copies every still-available item into the cart. Items that are
// gone or out of stock are counted as invalid.
func (s *Server) handleLoadWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)
	list, ok := s.store.wishlistByID(userID, chi.URLParam(r, "wishlistID"))
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Wishlist not found"))
		return
	}

	var result loadToCartData
	now := s.now()
	updated, err := s.store.mutateCart(userID, func(c *cart.Cart, stock map[string]*inventory.Item) error {
		for _, saved := range list.Items {
			item, ok := stock[string(saved.InventoryID)]
			if !ok || !item.Available() {
				result.InvalidItems++
				continue
			}
			addLine(c, *item, saved.Quantity, now)
			result.ValidItems++
		}
		return nil
	})
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	result.Cart = updated

	msg := "Wishlist loaded to cart"
	if result.Partial() {
		msg = "Wishlist loaded to cart. Some items are no longer available."
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Data: result, Message: msg})
}

func (s *Server) handleDeleteWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.store.deleteWishlist(userIDFromContext(ctx), chi.URLParam(r, "wishlistID")) {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Wishlist not found"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Wishlist deleted successfully"})
}
