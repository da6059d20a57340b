// Package tokenstore persists the API bearer token under an ordered list of candidate
// keys, across a durable scope and a per-process session scope.
//
// Reads return the first non-empty value, checking every key of the durable scope
// before the session scope. Writes land in the durable scope under every key so
// callers still reading the legacy key keep working. Clear wipes every key in every
// scope.
package tokenstore

import (
	"context"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// KeyPrimary is the current storage key.
	KeyPrimary = "authToken"
	// KeyLegacy is kept for sessions issued before KeyPrimary existed.
	KeyLegacy = "token"
)

// DefaultKeys is the candidate list in read-priority order.
var DefaultKeys = []string{KeyPrimary, KeyLegacy}

// Scope names a storage lifetime.
type Scope string

const (
	ScopeDurable Scope = "durable"
	ScopeSession Scope = "session"
)

// Backend is a key/value substrate for one scope.
type Backend interface {
	// Get returns the first non-empty value among keys, in order.
	Get(ctx context.Context, keys ...string) (string, bool, error)
	// SetAll writes every pair in one operation.
	SetAll(ctx context.Context, values map[string]string) error
	// Delete removes keys; absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

type scoped struct {
	scope   Scope
	backend Backend
}

// Store is the single owner of the persisted credential.
type Store struct {
	mu     sync.Mutex
	keys   []string
	scopes []scoped
}

// Option customizes a Store.
type Option func(*Store)

// WithKeys overrides the candidate key list. Order is read priority.
func WithKeys(keys ...string) Option {
	return func(s *Store) {
		clean := make([]string, 0, len(keys))
		for _, k := range keys {
			if k = strings.TrimSpace(k); k != "" {
				clean = append(clean, k)
			}
		}
		if len(clean) > 0 {
			s.keys = clean
		}
	}
}

// New builds a store. A nil session backend defaults to an in-memory one; durable is required.
func New(durable, session Backend, opts ...Option) *Store {
	if session == nil {
		session = NewMemoryBackend()
	}
	s := &Store{
		keys: append([]string(nil), DefaultKeys...),
		scopes: []scoped{
			{scope: ScopeDurable, backend: durable},
			{scope: ScopeSession, backend: session},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns the candidate keys in read-priority order.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Read returns the persisted token. A backend failure in one scope does not hide a
// token found in another; the error is only returned when nothing was found.
func (s *Store) Read(ctx context.Context) (string, bool, error) {
	var errs error
	for _, sc := range s.scopes {
		if sc.backend == nil {
			continue
		}
		token, ok, err := sc.backend.Get(ctx, s.keys...)
		if err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read "+string(sc.scope)+" token scope"))
			continue
		}
		if ok && token != "" {
			return token, true, nil
		}
	}
	return "", false, errs
}

// Write stores token under every candidate key of the durable scope.
func (s *Store) Write(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	durable := s.scopes[0].backend
	if durable == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "durable token scope not configured")
	}

	values := make(map[string]string, len(s.keys))
	for _, k := range s.keys {
		values[k] = token
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := durable.SetAll(ctx, values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write token")
	}
	return nil
}

// Clear removes every candidate key from every scope.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	for _, sc := range s.scopes {
		if sc.backend == nil {
			continue
		}
		if err := sc.backend.Delete(ctx, s.keys...); err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear "+string(sc.scope)+" token scope"))
		}
	}
	return errs
}
