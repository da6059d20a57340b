package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
)

type stubGateway struct {
	mu          sync.Mutex
	user        *auth.User
	meErr       error
	loginErr    error
	meCalls     int
	loginCalls  int
	logoutCalls int
	onLogin     func()
}

func (g *stubGateway) Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error) {
	g.mu.Lock()
	g.loginCalls++
	g.mu.Unlock()
	if g.loginErr != nil {
		return nil, g.loginErr
	}
	if g.onLogin != nil {
		g.onLogin()
	}
	return &auth.LoginResult{Token: "tok", User: g.user}, nil
}

func (g *stubGateway) Logout(ctx context.Context) auth.LogoutResult {
	g.mu.Lock()
	g.logoutCalls++
	g.mu.Unlock()
	return auth.LogoutResult{Success: true, Message: "Logged out locally"}
}

func (g *stubGateway) CurrentUser(ctx context.Context) (*auth.User, error) {
	g.mu.Lock()
	g.meCalls++
	g.mu.Unlock()
	if g.meErr != nil {
		return nil, g.meErr
	}
	return g.user, nil
}

type stubCart struct {
	mu            sync.Mutex
	authenticated bool
	loads         int
	resets        int
	loadErr       error
	rejectOnLoad  bool
}

func (c *stubCart) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

func (c *stubCart) SetAuthenticated(v bool) {
	c.mu.Lock()
	c.authenticated = v
	c.mu.Unlock()
}

func (c *stubCart) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.rejectOnLoad {
		c.authenticated = false
	}
	return c.loadErr
}

func (c *stubCart) Reset() {
	c.mu.Lock()
	c.resets++
	c.authenticated = false
	c.mu.Unlock()
}

type stubTokens struct {
	mu    sync.Mutex
	token string
	err   error
}

func (s *stubTokens) Read(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != "", s.err
}

func (s *stubTokens) set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func newBootstrapper(t *testing.T, gw *stubGateway, cart *stubCart, tokens *stubTokens) *Bootstrapper {
	t.Helper()
	b, err := New(Params{Gateway: gw, Cart: cart, Tokens: tokens})
	if err != nil {
		t.Fatalf("new bootstrapper: %v", err)
	}
	return b
}

func TestBootWithoutTokenMakesNoCalls(t *testing.T) {
	gw := &stubGateway{}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, &stubTokens{})

	sess := b.Boot(context.Background())
	if sess.Authenticated {
		t.Fatalf("expected unauthenticated session")
	}
	if gw.meCalls != 0 || cart.loads != 0 {
		t.Fatalf("expected no calls, got me=%d loads=%d", gw.meCalls, cart.loads)
	}
}

func TestBootWithValidTokenLoadsCartOnce(t *testing.T) {
	gw := &stubGateway{user: &auth.User{ID: "u1", Name: "Ana"}}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})

	sess := b.Boot(context.Background())
	if !sess.Authenticated || sess.User == nil || sess.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if gw.meCalls != 1 || cart.loads != 1 {
		t.Fatalf("expected one identity check and one load, got me=%d loads=%d", gw.meCalls, cart.loads)
	}
	if !cart.Authenticated() {
		t.Fatalf("expected cart to be authenticated")
	}
	if got := b.Current(); !got.Authenticated {
		t.Fatalf("expected Current to reflect boot")
	}
}

func TestBootRejectedIdentitySignsOut(t *testing.T) {
	cases := map[string]error{
		"token invalid": pkgerrors.New(pkgerrors.CodeTokenInvalid, "session expired"),
		"network":       pkgerrors.New(pkgerrors.CodeNetwork, "unable to reach the server"),
		"remote":        pkgerrors.New(pkgerrors.CodeRemote, "Service unavailable"),
	}
	for name, meErr := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &stubGateway{meErr: meErr}
			cart := &stubCart{}
			b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})

			sess := b.Boot(context.Background())
			if sess.Authenticated {
				t.Fatalf("expected unauthenticated session")
			}
			if cart.loads != 0 {
				t.Fatalf("expected no cart load, got %d", cart.loads)
			}
			if cart.resets != 1 {
				t.Fatalf("expected cart reset, got %d", cart.resets)
			}
		})
	}
}

func TestBootCartRejectionEndsSession(t *testing.T) {
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	cart := &stubCart{rejectOnLoad: true}
	b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})

	if sess := b.Boot(context.Background()); sess.Authenticated {
		t.Fatalf("expected the cart's rejection to end the session")
	}
}

func TestBootCartLoadFailureKeepsSession(t *testing.T) {
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	cart := &stubCart{loadErr: errors.New("boom")}
	b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})

	if sess := b.Boot(context.Background()); !sess.Authenticated {
		t.Fatalf("expected session to survive a failed cart load")
	}
}

func TestLoginResyncsWithoutDelay(t *testing.T) {
	tokens := &stubTokens{}
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	gw.onLogin = func() { tokens.set("tok") }
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, tokens)

	res, sess, err := b.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "tok" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !sess.Authenticated || sess.User == nil || sess.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if cart.loads != 1 {
		t.Fatalf("expected one cart load, got %d", cart.loads)
	}
	if gw.meCalls != 0 {
		t.Fatalf("login should not re-check identity, got %d", gw.meCalls)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	gw := &stubGateway{loginErr: pkgerrors.New(pkgerrors.CodeRemote, "Invalid credentials")}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, &stubTokens{})

	_, sess, err := b.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "pw"})
	if !pkgerrors.Is(err, pkgerrors.CodeRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if sess.Authenticated || cart.loads != 0 {
		t.Fatalf("expected no session and no load, got %+v loads=%d", sess, cart.loads)
	}
}

func TestResyncDoesNotReloadAuthenticatedSession(t *testing.T) {
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})

	b.Boot(context.Background())
	sess := b.Resync(context.Background())
	if !sess.Authenticated {
		t.Fatalf("expected session to stay authenticated")
	}
	if cart.loads != 1 {
		t.Fatalf("expected no duplicate load, got %d", cart.loads)
	}
}

func TestResyncWithoutTokenSignsOut(t *testing.T) {
	tokens := &stubTokens{token: "tok"}
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, tokens)
	b.Boot(context.Background())

	tokens.set("")
	if sess := b.Resync(context.Background()); sess.Authenticated {
		t.Fatalf("expected unauthenticated session")
	}
	if cart.Authenticated() {
		t.Fatalf("expected cart reset")
	}
}

func TestLogoutResetsCartAndSession(t *testing.T) {
	gw := &stubGateway{user: &auth.User{ID: "u1"}}
	cart := &stubCart{}
	b := newBootstrapper(t, gw, cart, &stubTokens{token: "tok"})
	b.Boot(context.Background())

	res := b.Logout(context.Background())
	if !res.Success {
		t.Fatalf("logout always succeeds locally")
	}
	if gw.logoutCalls != 1 || cart.resets == 0 || cart.Authenticated() {
		t.Fatalf("unexpected state: logout=%d resets=%d", gw.logoutCalls, cart.resets)
	}
	if b.Current().Authenticated {
		t.Fatalf("expected session cleared")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Params{Cart: &stubCart{}, Tokens: &stubTokens{}}); err == nil {
		t.Fatalf("expected missing gateway error")
	}
	if _, err := New(Params{Gateway: &stubGateway{}, Tokens: &stubTokens{}}); err == nil {
		t.Fatalf("expected missing cart error")
	}
	if _, err := New(Params{Gateway: &stubGateway{}, Cart: &stubCart{}}); err == nil {
		t.Fatalf("expected missing token reader error")
	}
}
