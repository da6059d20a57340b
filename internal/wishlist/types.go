package wishlist

import (
	"time"

	"github.com/angelmondragon/foodbank-client/pkg/types"
)

// Wishlist is a named snapshot of cart items. It is independent of the cart once created.
type Wishlist struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Items       []types.CartItem `json:"items"`
	TotalItems  int              `json:"total_items"`
	CreatedAt   time.Time        `json:"created_at"`
}

// LoadResult reports how many saved items made it into the cart.
type LoadResult struct {
	ValidItems   int `json:"validItems"`
	InvalidItems int `json:"invalidItems"`
}

// Partial reports whether some saved items were unavailable.
func (r LoadResult) Partial() bool {
	return r.InvalidItems > 0
}

type createRequest struct {
	Name        string           `json:"name" validate:"required,notblank"`
	Description string           `json:"description"`
	Items       []types.CartItem `json:"items"`
}
