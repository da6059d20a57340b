package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/types"
)

type stubTransport struct {
	requests []apiclient.Request
	data     any
	err      error
	message  string
}

func (s *stubTransport) DoInto(_ context.Context, req apiclient.Request, out any) (*types.Envelope, error) {
	s.requests = append(s.requests, req)
	env := &types.Envelope{Success: s.err == nil, Message: s.message}
	if s.err != nil {
		return env, s.err
	}
	if s.data != nil && out != nil {
		raw, _ := json.Marshal(s.data)
		env.Data = raw
		_ = json.Unmarshal(raw, out)
	}
	return env, nil
}

type stubCart struct {
	authenticated bool
	loads         int
	loadErr       error
}

func (s *stubCart) Authenticated() bool { return s.authenticated }

func (s *stubCart) Load(context.Context) error {
	s.loads++
	return s.loadErr
}

func newTestService(t *testing.T, tr *stubTransport, cart *stubCart) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Client: tr, Cart: cart})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestOperationsRequireAuthentication(t *testing.T) {
	tr := &stubTransport{}
	svc := newTestService(t, tr, &stubCart{})
	ctx := context.Background()

	if _, err := svc.List(ctx); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("list: expected unauthorized, got %v", err)
	}
	if _, err := svc.Create(ctx, "Weekly", "", nil); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("create: expected unauthorized, got %v", err)
	}
	if _, err := svc.LoadToCart(ctx, "w1"); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("load: expected unauthorized, got %v", err)
	}
	if err := svc.Delete(ctx, "w1"); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("delete: expected unauthorized, got %v", err)
	}
	if len(tr.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(tr.requests))
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	tr := &stubTransport{}
	svc := newTestService(t, tr, &stubCart{authenticated: true})

	for _, name := range []string{"", "   "} {
		if _, err := svc.Create(context.Background(), name, "desc", nil); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("name %q: expected validation error, got %v", name, err)
		}
	}
	if len(tr.requests) != 0 {
		t.Fatalf("expected no requests")
	}
}

func TestCreateSendsItems(t *testing.T) {
	tr := &stubTransport{data: Wishlist{ID: "w1", Name: "Weekly", TotalItems: 2}}
	svc := newTestService(t, tr, &stubCart{authenticated: true})

	items := []types.CartItem{{InventoryID: "inv-1", ItemName: "Rice", Quantity: 2}}
	wl, err := svc.Create(context.Background(), " Weekly ", "staples", items)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if wl.ID != "w1" || wl.TotalItems != 2 {
		t.Fatalf("unexpected wishlist %+v", wl)
	}
	req := tr.requests[0]
	body := req.Body.(createRequest)
	if req.Method != http.MethodPost || req.Path != "/wishlists" || body.Name != "Weekly" || len(body.Items) != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if !req.Auth {
		t.Fatalf("expected authenticated request")
	}
}

func TestLoadToCartReturnsCountsAndHydrates(t *testing.T) {
	tr := &stubTransport{data: map[string]int{"validItems": 3, "invalidItems": 1}}
	cart := &stubCart{authenticated: true}
	svc := newTestService(t, tr, cart)

	res, err := svc.LoadToCart(context.Background(), "w1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.ValidItems != 3 || res.InvalidItems != 1 || !res.Partial() {
		t.Fatalf("unexpected result %+v", res)
	}
	if cart.loads != 1 {
		t.Fatalf("expected one cart load, got %d", cart.loads)
	}
	if tr.requests[0].Path != "/wishlists/w1/load-to-cart" {
		t.Fatalf("unexpected path %s", tr.requests[0].Path)
	}
}

func TestLoadToCartSkipsHydrationOnFailure(t *testing.T) {
	tr := &stubTransport{
		err:     pkgerrors.New(pkgerrors.CodeRemote, "Not Found").WithStatus(http.StatusNotFound),
		message: "Wishlist not found",
	}
	cart := &stubCart{authenticated: true}
	svc := newTestService(t, tr, cart)

	_, err := svc.LoadToCart(context.Background(), "missing")
	if got := pkgerrors.UserMessage(err, ""); got != "Wishlist not found" {
		t.Fatalf("expected server message, got %q", got)
	}
	if cart.loads != 0 {
		t.Fatalf("expected no cart load")
	}
}

func TestListReturnsEmptySliceWhenServerSendsNone(t *testing.T) {
	tr := &stubTransport{}
	svc := newTestService(t, tr, &stubCart{authenticated: true})

	lists, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if lists == nil || len(lists) != 0 {
		t.Fatalf("expected empty slice, got %#v", lists)
	}
}

func TestDeleteUsesDefaultMessageWithoutServerMessage(t *testing.T) {
	tr := &stubTransport{err: pkgerrors.New(pkgerrors.CodeRemote, "Internal Server Error").WithStatus(http.StatusInternalServerError)}
	svc := newTestService(t, tr, &stubCart{authenticated: true})

	err := svc.Delete(context.Background(), "w1")
	if got := pkgerrors.UserMessage(err, ""); got != deleteFailedMessage {
		t.Fatalf("expected default message, got %q", got)
	}
	if tr.requests[0].Method != http.MethodDelete {
		t.Fatalf("expected DELETE")
	}
}
