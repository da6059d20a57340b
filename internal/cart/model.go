package cart

import "github.com/angelmondragon/foodbank-client/pkg/types"

// Cart is the server-authoritative cart. It is always replaced wholesale.
type Cart struct {
	ID         string           `json:"_id,omitempty"`
	Items      []types.CartItem `json:"items"`
	TotalItems int              `json:"total_items"`
}

// Empty reports whether the cart holds no items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Item returns the line with the given id.
func (c Cart) Item(id string) (types.CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return types.CartItem{}, false
}

func (c Cart) clone() Cart {
	out := c
	out.Items = append([]types.CartItem(nil), c.Items...)
	if out.Items == nil {
		out.Items = []types.CartItem{}
	}
	return out
}

func emptyCart() Cart {
	return Cart{Items: []types.CartItem{}}
}

// Status is the cart store's lifecycle state.
type Status string

const (
	// StatusIdle means nothing is loaded, usually because there is no session.
	StatusIdle Status = "idle"
	// StatusLoading means a cart fetch is in flight.
	StatusLoading Status = "loading"
	// StatusReady holds a cart adopted from the server.
	StatusReady Status = "ready"
	// StatusError holds a failure message next to the last known cart.
	StatusError Status = "error"
)

// State is an immutable snapshot of the cart store.
type State struct {
	Status        Status
	Cart          Cart
	Error         string
	Authenticated bool
}

// Loading reports whether a fetch is in flight.
func (s State) Loading() bool {
	return s.Status == StatusLoading
}

// Result is returned by successful cart mutations.
type Result struct {
	Cart    Cart
	Message string
}
