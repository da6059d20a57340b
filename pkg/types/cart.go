package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// InventoryRef identifies an inventory item. The API sends either the bare id or the
// populated inventory document; both decode to the id.
type InventoryRef string

func (r *InventoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = InventoryRef(id)
		return nil
	}
	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = InventoryRef(doc.ID)
	return nil
}

// CartItem is the line shape shared by carts and wishlists.
type CartItem struct {
	ID              string       `json:"_id,omitempty"`
	InventoryID     InventoryRef `json:"inventory_id"`
	ItemName        string       `json:"item_name"`
	Category        string       `json:"category,omitempty"`
	DietaryCategory string       `json:"dietary_category,omitempty"`
	Quantity        int          `json:"quantity"`
	AddedAt         *time.Time   `json:"added_at,omitempty"`
}

// CountQuantities sums item quantities.
func CountQuantities(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
