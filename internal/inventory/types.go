package inventory

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/pkg/types"
)

// Item is an inventory record as served by the API.
type Item struct {
	ID                string     `json:"_id"`
	ItemName          string     `json:"item_name"`
	Description       string     `json:"description,omitempty"`
	Category          string     `json:"category"`
	DietaryCategory   string     `json:"dietary_category,omitempty"`
	Quantity          int        `json:"quantity"`
	Unit              string     `json:"unit,omitempty"`
	LowStockThreshold int        `json:"low_stock_threshold,omitempty"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
	FoodbankID        string     `json:"foodbank_id,omitempty"`
	Location          string     `json:"location,omitempty"`
}

// Available reports whether at least one unit is in stock.
func (i Item) Available() bool {
	return i.Quantity > 0
}

// Filters narrows an inventory listing. Zero values are omitted from the query.
type Filters struct {
	Search          string
	Category        string
	DietaryCategory string
	FoodbankID      string
	Sort            string
	LowStock        bool
	Page            int
	Limit           int
}

func (f Filters) query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("search", f.Search)
	set("category", f.Category)
	set("dietary_category", f.DietaryCategory)
	set("foodbank_id", f.FoodbankID)
	set("sort", f.Sort)
	if f.LowStock {
		q.Set("low_stock", "true")
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Page is one page of a listing.
type Page struct {
	Items      []Item
	Pagination types.Pagination
}

// Stats summarizes the inventory.
type Stats struct {
	TotalItems        int            `json:"total_items"`
	TotalQuantity     int            `json:"total_quantity"`
	LowStockCount     int            `json:"low_stock_count"`
	ExpiringSoonCount int            `json:"expiring_soon_count"`
	ByCategory        map[string]int `json:"by_category,omitempty"`
}
