// Package session reconciles the persisted token with the cart store: at startup,
// and again right after a login resolves, so the cart hydrates without a timed wait.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
)

// Session is the process-wide sign-in state.
type Session struct {
	Authenticated bool
	User          *auth.User
}

type gateway interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error)
	Logout(ctx context.Context) auth.LogoutResult
	CurrentUser(ctx context.Context) (*auth.User, error)
}

type cartStore interface {
	Authenticated() bool
	SetAuthenticated(authenticated bool)
	Load(ctx context.Context) error
	Reset()
}

type tokenReader interface {
	Read(ctx context.Context) (string, bool, error)
}

// Params groups dependencies for the bootstrapper.
type Params struct {
	Gateway gateway
	Cart    cartStore
	Tokens  tokenReader
	Logger  *logger.Logger
}

// Bootstrapper owns the single live Session.
type Bootstrapper struct {
	gateway gateway
	cart    cartStore
	tokens  tokenReader
	logg    *logger.Logger

	// opMu serializes Boot, Resync, Login and Logout so two of them never race to load the cart.
	opMu    sync.Mutex
	mu      sync.RWMutex
	session Session
}

// New builds a bootstrapper with an unauthenticated session.
func New(params Params) (*Bootstrapper, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("auth gateway is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token reader is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Bootstrapper{
		gateway: params.Gateway,
		cart:    params.Cart,
		tokens:  params.Tokens,
		logg:    logg,
	}, nil
}

// Current returns the session as last reconciled.
func (b *Bootstrapper) Current() Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Boot runs once at startup. Without a token nothing touches the network. With one,
// the identity check decides; on success the cart is loaded exactly once.
func (b *Bootstrapper) Boot(ctx context.Context) Session {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	ctx = b.logg.WithOperation(ctx, "session.boot")

	token, ok := b.readToken(ctx)
	if !ok {
		b.logg.Info(ctx, "session.boot.no_token")
		return b.signedOut()
	}
	ctx = b.logg.WithTokenFingerprint(ctx, token)

	user, err := b.gateway.CurrentUser(ctx)
	if err != nil {
		// Routine for expired tokens. The gateway has already cleared the store on 401/500.
		fields := pkgerrors.Dump(err).Fields()
		fields["token_cleared"] = pkgerrors.Is(err, pkgerrors.CodeTokenInvalid)
		b.logg.Info(b.logg.WithFields(ctx, fields), "session.boot.identity_rejected")
		return b.signedOut()
	}

	if user != nil {
		ctx = b.logg.WithUserID(ctx, user.ID)
	}
	b.logg.Info(ctx, "session.boot.authenticated")
	return b.signedIn(ctx, user)
}

// Resync re-reads the token store after a login. A token with no authenticated session
// marks the session and loads the cart; an already authenticated session is left alone.
func (b *Bootstrapper) Resync(ctx context.Context) Session {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	return b.resync(b.logg.WithOperation(ctx, "session.resync"))
}

func (b *Bootstrapper) resync(ctx context.Context) Session {
	if !b.hasToken(ctx) {
		return b.signedOut()
	}
	current := b.Current()
	if current.Authenticated && b.cart.Authenticated() {
		b.logg.Debug(ctx, "session.resync.already_authenticated")
		return current
	}
	return b.signedIn(ctx, current.User)
}

// Login signs in and resyncs immediately so the cart hydrates in the same call.
func (b *Bootstrapper) Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, Session, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	ctx = b.logg.WithOperation(ctx, "session.login")

	res, err := b.gateway.Login(ctx, creds)
	if err != nil {
		return nil, b.Current(), err
	}

	b.mu.Lock()
	b.session = Session{User: res.User}
	b.mu.Unlock()

	return res, b.resync(ctx), nil
}

// Logout always succeeds locally: the gateway clears the token and the cart is reset.
func (b *Bootstrapper) Logout(ctx context.Context) auth.LogoutResult {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	ctx = b.logg.WithOperation(ctx, "session.logout")

	res := b.gateway.Logout(ctx)
	b.signedOut()
	b.logg.Info(b.logg.WithField(ctx, "remote", res.Remote), "session.logout")
	return res
}

func (b *Bootstrapper) hasToken(ctx context.Context) bool {
	_, ok := b.readToken(ctx)
	return ok
}

func (b *Bootstrapper) readToken(ctx context.Context) (string, bool) {
	token, ok, err := b.tokens.Read(ctx)
	if err != nil {
		b.logg.Warn(b.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "session.token_read_failed")
	}
	return token, ok
}

func (b *Bootstrapper) signedOut() Session {
	b.cart.Reset()
	b.mu.Lock()
	b.session = Session{}
	b.mu.Unlock()
	return Session{}
}

func (b *Bootstrapper) signedIn(ctx context.Context, user *auth.User) Session {
	b.mu.Lock()
	b.session = Session{Authenticated: true, User: user}
	current := b.session
	b.mu.Unlock()

	b.cart.SetAuthenticated(true)
	if err := b.cart.Load(ctx); err != nil {
		b.logg.Warn(b.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "session.cart_load_failed")
	}
	if !b.cart.Authenticated() {
		// The cart endpoint rejected the token after all.
		b.mu.Lock()
		b.session = Session{}
		b.mu.Unlock()
		return Session{}
	}
	return current
}
