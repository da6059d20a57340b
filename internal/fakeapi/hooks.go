package fakeapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	"github.com/angelmondragon/foodbank-client/pkg/security"
)

// Hooks lets tests observe and steer the fake backend.
type Hooks struct {
	srv *Server

	mu       sync.Mutex
	calls    map[string]int
	meStatus int
}

func newHooks(srv *Server) *Hooks {
	return &Hooks{srv: srv, calls: map[string]int{}}
}

func (h *Hooks) record(route string) {
	h.mu.Lock()
	h.calls[route]++
	h.mu.Unlock()
}

// Calls returns how many requests hit route, written as "METHOD /api/pattern".
func (h *Hooks) Calls(route string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[route]
}

// TotalCalls returns the number of requests served.
func (h *Hooks) TotalCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for _, n := range h.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes every counter.
func (h *Hooks) ResetCalls() {
	h.mu.Lock()
	h.calls = map[string]int{}
	h.mu.Unlock()
}

// ForceMeStatus makes GET /auth/me fail with status. Zero restores normal behaviour.
func (h *Hooks) ForceMeStatus(status int) {
	h.mu.Lock()
	h.meStatus = status
	h.mu.Unlock()
}

func (h *Hooks) forcedMeStatus() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.meStatus
}

// SetStock overrides the available quantity of an inventory item.
func (h *Hooks) SetStock(inventoryID string, qty int) error {
	if !h.srv.store.setStock(inventoryID, qty) {
		return fmt.Errorf("unknown inventory item %q", inventoryID)
	}
	return nil
}

// SeedUser creates a verified account and returns its profile.
func (h *Hooks) SeedUser(name, email, password, role string) (auth.User, error) {
	parsed, err := enums.ParseUserRole(role)
	if err != nil {
		return auth.User{}, err
	}
	hash, err := security.HashPassword(password, h.srv.passwords)
	if err != nil {
		return auth.User{}, err
	}
	now := h.srv.now()
	rec := &userRecord{
		User: auth.User{
			ID:         newID(),
			Name:       name,
			Email:      normalizeEmail(email),
			Role:       parsed.String(),
			IsVerified: true,
			CreatedAt:  &now,
		},
		PasswordHash: hash,
	}
	if !h.srv.store.insertUser(rec) {
		return auth.User{}, fmt.Errorf("user %q already exists", email)
	}
	return rec.User, nil
}

// IssueToken mints a bearer token for an existing user without a login call.
func (h *Hooks) IssueToken(userID string) (string, error) {
	rec, ok := h.srv.store.userByID(userID)
	if !ok {
		return "", fmt.Errorf("unknown user %q", userID)
	}
	return h.srv.mintToken(rec.User)
}

// VerificationToken returns the pending email verification token for email.
func (h *Hooks) VerificationToken(email string) (string, bool) {
	rec, ok := h.srv.store.userByEmail(email)
	if !ok || rec.VerificationToken == "" {
		return "", false
	}
	return rec.VerificationToken, true
}

// Advance shifts the server clock. A negative duration backdates minted tokens.
func (h *Hooks) Advance(d time.Duration) {
	h.srv.clockMu.Lock()
	h.srv.offset += d
	h.srv.clockMu.Unlock()
}
