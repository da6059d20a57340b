package fakeapi

import (
	"github.com/angelmondragon/foodbank-client/internal/inventory"
)

// SeedItem ids are stable so tests and local scripts can address them.
const (
	SeedRiceID     = "inv-rice"
	SeedBeansID    = "inv-beans"
	SeedMilkID     = "inv-milk"
	SeedBreadID    = "inv-bread"
	SeedApplesID   = "inv-apples"
	SeedOatmealID  = "inv-oatmeal"
	SeedTomatoesID = "inv-tomatoes"
)

func (s *Server) seedInventory() {
	now := s.now()
	seed := []struct {
		item        inventory.Item
		expiresDays int
	}{
		{item: inventory.Item{ID: SeedRiceID, ItemName: "Brown Rice", Category: "grains", DietaryCategory: "vegan", Quantity: 120, Unit: "lb", LowStockThreshold: 20}},
		{item: inventory.Item{ID: SeedBeansID, ItemName: "Black Beans", Category: "canned", DietaryCategory: "vegan", Quantity: 80, Unit: "can", LowStockThreshold: 15}},
		{item: inventory.Item{ID: SeedMilkID, ItemName: "Whole Milk", Category: "dairy", DietaryCategory: "vegetarian", Quantity: 10, Unit: "gal", LowStockThreshold: 12}, expiresDays: 3},
		{item: inventory.Item{ID: SeedBreadID, ItemName: "Gluten Free Bread", Category: "bakery", DietaryCategory: "gluten_free", Quantity: 25, Unit: "loaf", LowStockThreshold: 5}, expiresDays: 5},
		{item: inventory.Item{ID: SeedApplesID, ItemName: "Apples", Category: "produce", DietaryCategory: "vegan", Quantity: 60, Unit: "lb", LowStockThreshold: 10}, expiresDays: 14},
		{item: inventory.Item{ID: SeedOatmealID, ItemName: "Oatmeal", Category: "grains", DietaryCategory: "vegetarian", Quantity: 40, Unit: "box", LowStockThreshold: 8}},
		{item: inventory.Item{ID: SeedTomatoesID, ItemName: "Canned Tomatoes", Category: "canned", DietaryCategory: "low_sodium", Quantity: 4, Unit: "can", LowStockThreshold: 10}},
	}
	for _, entry := range seed {
		item := entry.item
		item.Location = "Main Warehouse"
		if entry.expiresDays > 0 {
			item.ExpirationDate = timePtr(now.AddDate(0, 0, entry.expiresDays))
		}
		s.store.putInventory(item)
	}
}
