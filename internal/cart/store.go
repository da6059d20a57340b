// Package cart holds the client-side cart state machine.
//
// The Store moves between Idle, Loading, Ready and Error. Every mutation is gated on
// the authenticated flag and fails fast without a network call when there is no
// session. Successful calls adopt the cart the server returns; failures keep the last
// known cart next to the error message. Mutations are not serialized: each response
// is applied when it arrives, so the last response wins. Reset and Close start a new
// epoch, and responses belonging to an older epoch are dropped.
package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	loginToAddMessage      = "Please log in to add items to cart"
	loginToUpdateMessage   = "Please log in to update cart"
	loginToRemoveMessage   = "Please log in to remove items from cart"
	loginToClearMessage    = "Please log in to clear cart"
	loginToWishlistMessage = "Please log in to save wishlist"
	wishlistNameMessage    = "Wishlist name is required"
)

type tokenReader interface {
	Read(ctx context.Context) (string, bool, error)
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Remote Remote
	Tokens tokenReader
	Logger *logger.Logger
}

// Store is the single owner of cart state for a client process.
type Store struct {
	remote Remote
	tokens tokenReader
	logg   *logger.Logger
	loads  singleflight.Group

	mu        sync.Mutex
	state     State
	epoch     uint64
	closed    bool
	observers map[int]func(State)
	nextObs   int
}

// NewStore creates an idle, unauthenticated cart store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("cart remote is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token reader is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		remote:    params.Remote,
		tokens:    params.Tokens,
		logg:      logg,
		state:     State{Status: StatusIdle, Cart: emptyCart()},
		observers: map[int]func(State){},
	}, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Authenticated reports whether mutations are currently allowed.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

// Subscribe registers fn for every state change and returns a func that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// SetAuthenticated flips the session gate. Dropping the session also drops the cart
// and any responses still in flight.
func (s *Store) SetAuthenticated(authenticated bool) {
	if !authenticated {
		s.Reset()
		return
	}
	s.apply(s.currentEpoch(), func(st *State) {
		st.Authenticated = true
	})
}

// Reset returns the store to Idle and drops responses still in flight. Used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()
	s.apply(epoch, func(st *State) {
		*st = State{Status: StatusIdle, Cart: emptyCart()}
	})
}

// Close detaches every observer and ignores results that arrive afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.epoch++
	s.observers = map[int]func(State){}
}

// ClearError leaves the Error state while keeping the last known cart.
func (s *Store) ClearError() {
	s.apply(s.currentEpoch(), func(st *State) {
		if st.Status != StatusError {
			return
		}
		st.Error = ""
		if st.Authenticated {
			st.Status = StatusReady
		} else {
			st.Status = StatusIdle
		}
	})
}

// Load fetches the server cart. Concurrent calls share one request, which outlives
// any single caller: a caller whose ctx ends stops waiting and the others still get
// the result. A 401 silently drops the session; any other failure moves to Error and
// keeps the last known cart.
func (s *Store) Load(ctx context.Context) error {
	epoch := s.currentEpoch()
	shared := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(fmt.Sprintf("cart:%d", epoch), func() (any, error) {
		return nil, s.load(shared, epoch)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) load(ctx context.Context, epoch uint64) error {
	s.apply(epoch, func(st *State) {
		st.Status = StatusLoading
	})

	cart, err := s.remote.Get(ctx)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeRemote) && pkgerrors.StatusOf(err) == http.StatusUnauthorized {
			s.logg.Info(ctx, "cart.load.unauthenticated")
			if epoch == s.currentEpoch() {
				s.Reset()
			}
			return nil
		}
		if errors.Is(err, context.Canceled) {
			s.logg.Info(ctx, "cart.load.abandoned")
			s.settle(epoch)
			return err
		}
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart.load.failed")
		s.fail(epoch, loadFailedMessage)
		return err
	}
	s.adopt(epoch, *cart)
	return nil
}

// Refresh re-derives the session gate from the token store rather than memory and
// loads the cart when a token is present. Safe to call concurrently.
func (s *Store) Refresh(ctx context.Context) error {
	_, ok, err := s.tokens.Read(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart.refresh.token_read_failed")
	}
	if !ok {
		s.SetAuthenticated(false)
		return nil
	}
	s.SetAuthenticated(true)
	return s.Load(ctx)
}

// AddItem adds quantity units of an inventory item and adopts the server's cart.
func (s *Store) AddItem(ctx context.Context, inventoryID string, quantity int) (Result, error) {
	if err := s.requireSession(loginToAddMessage); err != nil {
		return Result{}, err
	}
	inventoryID = strings.TrimSpace(inventoryID)
	if inventoryID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "inventory_id is required")
	}
	if quantity < 1 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	epoch := s.currentEpoch()
	cart, msg, err := s.remote.Add(ctx, inventoryID, quantity)
	if err != nil {
		return Result{}, s.mutationFailed(ctx, epoch, err, addFailedMessage)
	}
	s.adopt(epoch, *cart)
	return Result{Cart: cart.clone(), Message: msg}, nil
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the line.
func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int) (Result, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}
	if err := s.requireSession(loginToUpdateMessage); err != nil {
		return Result{}, err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	epoch := s.currentEpoch()
	cart, err := s.remote.Update(ctx, itemID, quantity)
	if err != nil {
		return Result{}, s.mutationFailed(ctx, epoch, err, updateFailedMessage)
	}
	s.adopt(epoch, *cart)
	return Result{Cart: cart.clone()}, nil
}

// RemoveItem deletes a line and adopts the server's cart.
func (s *Store) RemoveItem(ctx context.Context, itemID string) (Result, error) {
	if err := s.requireSession(loginToRemoveMessage); err != nil {
		return Result{}, err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	epoch := s.currentEpoch()
	cart, err := s.remote.Remove(ctx, itemID)
	if err != nil {
		return Result{}, s.mutationFailed(ctx, epoch, err, removeFailedMessage)
	}
	s.adopt(epoch, *cart)
	return Result{Cart: cart.clone()}, nil
}

// Clear empties the cart on the server.
func (s *Store) Clear(ctx context.Context) (Result, error) {
	if err := s.requireSession(loginToClearMessage); err != nil {
		return Result{}, err
	}

	epoch := s.currentEpoch()
	cart, err := s.remote.Clear(ctx)
	if err != nil {
		return Result{}, s.mutationFailed(ctx, epoch, err, clearFailedMessage)
	}
	s.adopt(epoch, *cart)
	return Result{Cart: cart.clone()}, nil
}

// SaveAsWishlist snapshots the server cart into a new wishlist. The cart is unchanged.
// The name is checked before the session so a blank name never costs a round trip.
func (s *Store) SaveAsWishlist(ctx context.Context, name, description string) (*wishlist.Wishlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, wishlistNameMessage).
			WithDetails(map[string]string{"name": "is required"})
	}
	if err := s.requireSession(loginToWishlistMessage); err != nil {
		return nil, err
	}

	epoch := s.currentEpoch()
	wl, err := s.remote.SaveAsWishlist(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return nil, s.mutationFailed(ctx, epoch, err, saveWishlistFailedMessage)
	}
	return wl, nil
}

func (s *Store) requireSession(message string) error {
	if !s.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	}
	return nil
}

func (s *Store) mutationFailed(ctx context.Context, epoch uint64, err error, fallback string) error {
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart.mutation.failed")
	s.fail(epoch, pkgerrors.UserMessage(err, fallback))
	return err
}

func (s *Store) adopt(epoch uint64, cart Cart) {
	s.apply(epoch, func(st *State) {
		st.Status = StatusReady
		st.Cart = cart.clone()
		st.Error = ""
	})
}

func (s *Store) fail(epoch uint64, message string) {
	s.apply(epoch, func(st *State) {
		st.Status = StatusError
		st.Error = message
	})
}

// settle leaves Loading without recording an error. The last known cart stays.
func (s *Store) settle(epoch uint64) {
	s.apply(epoch, func(st *State) {
		if st.Status != StatusLoading {
			return
		}
		if st.Authenticated {
			st.Status = StatusReady
		} else {
			st.Status = StatusIdle
		}
	})
}

func (s *Store) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// apply mutates state under the lock and notifies observers outside it. Updates from
// an older epoch, or after Close, are discarded.
func (s *Store) apply(epoch uint64, fn func(*State)) {
	s.mu.Lock()
	if s.closed || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	fn(&s.state)
	snap := s.snapshotLocked()
	observers := make([]func(State), 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Cart = s.state.Cart.clone()
	return snap
}
