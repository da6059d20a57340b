package fakeapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	"github.com/angelmondragon/foodbank-client/internal/cart"
	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/requests"
	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/google/uuid"
)

type userRecord struct {
	auth.User
	PasswordHash      string
	VerificationToken string
}

// memStore holds every collection behind one mutex. Handlers copy values out.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*userRecord
	emails    map[string]string
	inventory map[string]*inventory.Item
	carts     map[string]*cart.Cart
	wishlists map[string][]*ownedWishlist
	requests  map[string]*ownedRequest
	revoked   map[string]struct{}

	shifts      map[string]*shifts.Shift
	volunteers  map[string]*volunteers.Volunteer
	assignments map[string]*shifts.Assignment
}

type ownedWishlist struct {
	owner string
	list  wishlist.Wishlist
}

type ownedRequest struct {
	owner string
	req   requests.FoodRequest
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*userRecord{},
		emails:    map[string]string{},
		inventory: map[string]*inventory.Item{},
		carts:     map[string]*cart.Cart{},
		wishlists: map[string][]*ownedWishlist{},
		requests:  map[string]*ownedRequest{},
		revoked:   map[string]struct{}{},

		shifts:      map[string]*shifts.Shift{},
		volunteers:  map[string]*volunteers.Volunteer{},
		assignments: map[string]*shifts.Assignment{},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *memStore) insertUser(rec *userRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(rec.Email)
	if _, exists := s.emails[key]; exists {
		return false
	}
	s.users[rec.ID] = rec
	s.emails[key] = rec.ID
	return true
}

func (s *memStore) userByID(id string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return userRecord{}, false
	}
	return *rec, true
}

func (s *memStore) userByEmail(email string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return userRecord{}, false
	}
	return *s.users[id], true
}

func (s *memStore) updateUser(id string, fn func(*userRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

// usersSnapshot returns every account ordered by email.
func (s *memStore) usersSnapshot() []auth.User {
	s.mu.Lock()
	out := make([]auth.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.User)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (s *memStore) verifyByToken(token string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.VerificationToken != "" && rec.VerificationToken == token {
			rec.IsVerified = true
			rec.VerificationToken = ""
			return *rec, true
		}
	}
	return userRecord{}, false
}

func (s *memStore) revoke(jti string) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = struct{}{}
}

func (s *memStore) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *memStore) putInventory(item inventory.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := item
	s.inventory[item.ID] = &cp
}

func (s *memStore) setStock(id string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory[id]
	if !ok {
		return false
	}
	item.Quantity = qty
	return true
}

func (s *memStore) inventoryByID(id string) (inventory.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory[id]
	if !ok {
		return inventory.Item{}, false
	}
	return *item, true
}

// inventorySnapshot returns every item ordered by name.
func (s *memStore) inventorySnapshot() []inventory.Item {
	s.mu.Lock()
	out := make([]inventory.Item, 0, len(s.inventory))
	for _, item := range s.inventory {
		out = append(out, *item)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out
}

// cartLocked returns the user's cart, creating it on first access. Callers hold mu.
func (s *memStore) cartLocked(userID string) *cart.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart.Cart{ID: uuid.NewString(), Items: []types.CartItem{}}
		s.carts[userID] = c
	}
	return c
}

func (s *memStore) cartFor(userID string) cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.cartLocked(userID))
}

// mutateCart runs fn against the user's cart and returns the updated copy.
func (s *memStore) mutateCart(userID string, fn func(c *cart.Cart, stock map[string]*inventory.Item) error) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartLocked(userID)
	if err := fn(c, s.inventory); err != nil {
		return cart.Cart{}, err
	}
	c.TotalItems = types.CountQuantities(c.Items)
	return copyCart(c), nil
}

func copyCart(c *cart.Cart) cart.Cart {
	out := *c
	out.Items = append([]types.CartItem{}, c.Items...)
	return out
}

func (s *memStore) addWishlist(owner string, w wishlist.Wishlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlists[owner] = append([]*ownedWishlist{{owner: owner, list: w}}, s.wishlists[owner]...)
}

func (s *memStore) wishlistsFor(owner string) []wishlist.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wishlist.Wishlist, 0, len(s.wishlists[owner]))
	for _, w := range s.wishlists[owner] {
		out = append(out, w.list)
	}
	return out
}

func (s *memStore) wishlistByID(owner, id string) (wishlist.Wishlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wishlists[owner] {
		if w.list.ID == id {
			return w.list, true
		}
	}
	return wishlist.Wishlist{}, false
}

func (s *memStore) deleteWishlist(owner, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lists := s.wishlists[owner]
	for i, w := range lists {
		if w.list.ID == id {
			s.wishlists[owner] = append(lists[:i:i], lists[i+1:]...)
			return true
		}
	}
	return false
}

func (s *memStore) addRequest(owner string, req requests.FoodRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = &ownedRequest{owner: owner, req: req}
}

func (s *memStore) requestsFor(owner string) []requests.FoodRequest {
	s.mu.Lock()
	out := []requests.FoodRequest{}
	for _, r := range s.requests {
		if r.owner == owner {
			out = append(out, r.req)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out
}

func (s *memStore) requestByID(owner, id string) (requests.FoodRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.owner != owner {
		return requests.FoodRequest{}, false
	}
	return r.req, true
}

// allRequests returns every food request regardless of owner.
func (s *memStore) allRequests() []requests.FoodRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]requests.FoodRequest, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.req)
	}
	return out
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func timePtr(t time.Time) *time.Time {
	return &t
}
