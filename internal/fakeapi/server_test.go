package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(Params{
		Config: config.FakeAPIConfig{
			JWTSecret:            "test-secret",
			JWTIssuer:            "fakeapi-test",
			JWTExpirationMinutes: 5,
			SeedInventory:        true,
		},
		Passwords: config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

type wireEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Token      string          `json:"token"`
	User       json.RawMessage `json:"user"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, wireEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env wireEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func login(t *testing.T, srv *Server, ts *httptest.Server) string {
	t.Helper()
	_, err := srv.Hooks().SeedUser("Ada", "ada@example.com", "secret1", "recipient")
	require.NoError(t, err)
	status, env := call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env.Token)
	return env.Token
}

func TestRegisterVerifyLogin(t *testing.T) {
	srv, ts := testServer(t)

	status, env := call(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "secret1", "role": "donor",
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)

	status, env = call(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Grace", "email": "GRACE@example.com", "password": "secret1", "role": "donor",
	})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)

	creds := map[string]string{"email": "grace@example.com", "password": "secret1"}
	status, env = call(t, ts, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Please verify your email before logging in", env.Message)

	token, ok := srv.Hooks().VerificationToken("grace@example.com")
	require.True(t, ok)
	status, _ = call(t, ts, http.MethodGet, "/api/auth/verify-email?token="+token, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, ts, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env.Token)
	require.Contains(t, string(env.User), `"isVerified":true`)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, ts := testServer(t)
	_, err := srv.Hooks().SeedUser("Ada", "ada@example.com", "secret1", "recipient")
	require.NoError(t, err)

	status, env := call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid credentials", env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, _ := call(t, ts, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, ts, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, ts, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token has been revoked", env.Message)
}

func TestExpiredTokenRejected(t *testing.T) {
	srv, ts := testServer(t)
	srv.Hooks().Advance(-10 * time.Minute)
	token := login(t, srv, ts)

	status, _ := call(t, ts, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestForcedMeStatus(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	srv.Hooks().ForceMeStatus(http.StatusInternalServerError)
	status, env := call(t, ts, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusInternalServerError, status)
	require.False(t, env.Success)
	require.Equal(t, 2, srv.Hooks().Calls("GET /api/auth/me")+srv.Hooks().Calls("POST /api/auth/login"))
}

func TestCartLifecycle(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, env := call(t, ts, http.MethodPost, "/api/cart/add", token, map[string]any{"inventory_id": SeedRiceID, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"total_items":2`)

	status, env = call(t, ts, http.MethodPost, "/api/cart/add", token, map[string]any{"inventory_id": SeedTomatoesID, "quantity": 9})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"total_items":6`, "tomatoes are clamped to the 4 in stock")

	var cart struct {
		Items []struct {
			ID       string `json:"_id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 2)

	status, env = call(t, ts, http.MethodPut, "/api/cart/items/"+cart.Items[0].ID, token, map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"total_items":9`)

	status, _ = call(t, ts, http.MethodDelete, "/api/cart/items/missing", token, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, env = call(t, ts, http.MethodPost, "/api/cart/save-wishlist", token, map[string]string{"name": "Weekly"})
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, string(env.Data), `"total_items":9`)

	status, env = call(t, ts, http.MethodDelete, "/api/cart/clear", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, env.Data)

	status, env = call(t, ts, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"total_items":0`)
	require.Equal(t, 1, srv.Hooks().Calls("GET /api/cart"))
}

func TestAddOutOfStockItem(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)
	require.NoError(t, srv.Hooks().SetStock(SeedMilkID, 0))

	status, env := call(t, ts, http.MethodPost, "/api/cart/add", token, map[string]any{"inventory_id": SeedMilkID, "quantity": 1})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Whole Milk is out of stock", env.Message)
}

func TestLoadWishlistCountsUnavailableItems(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	items := []map[string]any{
		{"inventory_id": SeedRiceID, "item_name": "Brown Rice", "quantity": 1},
		{"inventory_id": SeedBeansID, "item_name": "Black Beans", "quantity": 1},
		{"inventory_id": SeedOatmealID, "item_name": "Oatmeal", "quantity": 1},
		{"inventory_id": SeedMilkID, "item_name": "Whole Milk", "quantity": 1},
	}
	status, env := call(t, ts, http.MethodPost, "/api/wishlists", token, map[string]any{"name": "Pantry", "items": items})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	require.NoError(t, srv.Hooks().SetStock(SeedMilkID, 0))
	status, env = call(t, ts, http.MethodPost, "/api/wishlists/"+created.ID+"/load-to-cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"validItems":3`)
	require.Contains(t, string(env.Data), `"invalidItems":1`)
	require.Equal(t, 1, srv.Hooks().Calls("POST /api/wishlists/{wishlistID}/load-to-cart"))

	status, _ = call(t, ts, http.MethodDelete, "/api/wishlists/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, ts, http.MethodDelete, "/api/wishlists/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestInventoryListing(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, env := call(t, ts, http.MethodGet, "/api/inventory?category=canned&sort=-quantity&limit=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Pagination)
	require.Equal(t, 2, env.Pagination.Total)
	require.Contains(t, string(env.Data), SeedBeansID)

	status, env = call(t, ts, http.MethodGet, "/api/inventory/alerts/low-stock", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), SeedMilkID)
	require.Contains(t, string(env.Data), SeedTomatoesID)

	status, env = call(t, ts, http.MethodGet, "/api/inventory/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(env.Data), `"low_stock_count":2`)
	require.Contains(t, string(env.Data), `"expiring_soon_count":2`)

	status, _ = call(t, ts, http.MethodGet, "/api/inventory/nope", token, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, ts, http.MethodGet, "/api/inventory", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestFoodRequests(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, env := call(t, ts, http.MethodPost, "/api/food-requests", token, map[string]any{
		"items":               []map[string]any{{"item_name": "Brown Rice", "quantity": 2}},
		"preferredPickupDate": "2026-11-02",
	})
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, string(env.Data), `"status":"pending"`)

	status, env = call(t, ts, http.MethodPost, "/api/food-requests", token, map[string]any{"items": []any{}, "preferredPickupDate": "2026-11-02"})
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, env.Success)

	status, env = call(t, ts, http.MethodGet, "/api/food-requests/my-requests", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, strings.Count(string(env.Data), `"_id"`))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, ts := testServer(t)
	login(t, srv, ts)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `foodbank_fakeapi_http_requests_total{method="POST",route="/api/auth/login",status="200"} 1`)
}
