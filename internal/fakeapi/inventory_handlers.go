package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/inventory"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := filterInventory(s.store.inventorySnapshot(), q.Get("search"), q.Get("category"),
		q.Get("dietary_category"), q.Get("foodbank_id"), q.Get("low_stock") == "true")
	sortInventory(items, q.Get("sort"))

	page := pagination.Params{
		Page:  positiveInt(q.Get("page"), 1),
		Limit: positiveInt(q.Get("limit"), pagination.DefaultLimit),
	}
	start, end := page.Bounds(len(items))
	meta := page.Meta(len(items))

	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       items[start:end],
		Pagination: &meta,
	})
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	item, ok := s.store.inventoryByID(chi.URLParam(r, "itemID"))
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Inventory item not found"))
		return
	}
	writeSuccess(w, item)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	out := []inventory.Item{}
	for _, item := range s.store.inventorySnapshot() {
		if lowStock(item) {
			out = append(out, item)
		}
	}
	writeSuccess(w, out)
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days := positiveInt(r.URL.Query().Get("days"), inventory.DefaultExpiringDays)
	out := []inventory.Item{}
	for _, item := range s.store.inventorySnapshot() {
		if expiresWithin(item, s.now(), days) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpirationDate.Before(*out[j].ExpirationDate) })
	writeSuccess(w, out)
}

func (s *Server) handleInventoryStats(w http.ResponseWriter, r *http.Request) {
	stats := inventory.Stats{ByCategory: map[string]int{}}
	now := s.now()
	for _, item := range s.store.inventorySnapshot() {
		stats.TotalItems++
		stats.TotalQuantity += item.Quantity
		stats.ByCategory[item.Category]++
		if lowStock(item) {
			stats.LowStockCount++
		}
		if expiresWithin(item, now, inventory.DefaultExpiringDays) {
			stats.ExpiringSoonCount++
		}
	}
	writeSuccess(w, stats)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	seen := map[string]struct{}{}
	out := []string{}
	for _, item := range s.store.inventorySnapshot() {
		if _, ok := seen[item.Category]; ok || item.Category == "" {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	sort.Strings(out)
	writeSuccess(w, out)
}

func (s *Server) handleDietaryCategories(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, inventory.DefaultDietaryCategories)
}

func filterInventory(items []inventory.Item, search, category, dietary, foodbank string, onlyLow bool) []inventory.Item {
	search = strings.ToLower(strings.TrimSpace(search))
	out := items[:0]
	for _, item := range items {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(item.ItemName+" "+item.Description), search):
			continue
		case category != "" && !strings.EqualFold(item.Category, category):
			continue
		case dietary != "" && !strings.EqualFold(item.DietaryCategory, dietary):
			continue
		case foodbank != "" && item.FoodbankID != foodbank:
			continue
		case onlyLow && !lowStock(item):
			continue
		}
		out = append(out, item)
	}
	return out
}

// sortInventory orders by name, quantity or expiration; a leading "-" reverses.
func sortInventory(items []inventory.Item, key string) {
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")
	var less func(a, b inventory.Item) bool
	switch key {
	case "quantity":
		less = func(a, b inventory.Item) bool { return a.Quantity < b.Quantity }
	case "expiration_date":
		less = func(a, b inventory.Item) bool {
			if a.ExpirationDate == nil || b.ExpirationDate == nil {
				return b.ExpirationDate == nil && a.ExpirationDate != nil
			}
			return a.ExpirationDate.Before(*b.ExpirationDate)
		}
	default:
		less = func(a, b inventory.Item) bool { return a.ItemName < b.ItemName }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func lowStock(item inventory.Item) bool {
	return item.LowStockThreshold > 0 && item.Quantity <= item.LowStockThreshold
}

func expiresWithin(item inventory.Item, now time.Time, days int) bool {
	if item.ExpirationDate == nil {
		return false
	}
	return !item.ExpirationDate.After(now.AddDate(0, 0, days))
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
