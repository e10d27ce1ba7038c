package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalogcart/api/controllers"
	"github.com/angelmondragon/catalogcart/api/middleware"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/storage"
	"github.com/angelmondragon/catalogcart/internal/storefront"
	"github.com/angelmondragon/catalogcart/pkg/config"
	"github.com/angelmondragon/catalogcart/pkg/logger"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
)

const (
	lemonSoda  = "58b5a5b1b6b6c7aacc25b3fb"
	tonicWater = "58b5a5b117bf36cf8aed54ab"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	store   *storage.Memory
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: config.AppEnvDev, CORSOrigins: []string{"http://localhost:3000"}},
		Session: config.SessionConfig{CookieName: "cc_session"},
	}
}

func newTestServer(t *testing.T, readiness map[string]controllers.Pinger) *testServer {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	sm := metrics.NewStorefrontMetrics(reg)
	store := storage.NewMemory()
	mgr, err := storefront.NewManager(cat, store, storefront.WithMetrics(sm))
	require.NoError(t, err)
	if readiness == nil {
		readiness = map[string]controllers.Pinger{"storage": mgr}
	}
	return &testServer{
		handler: NewRouter(testConfig(), logger.Nop(), cat, mgr, sm, reg, readiness),
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, path, sessionID, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := srv.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.AppEnvDev, rec.Header().Get("X-CatalogCart-Env"))

	rec, _ = srv.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := newTestServer(t, map[string]controllers.Pinger{"redis": stubPinger{err: errors.New("down")}})
	rec, env := failing.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)
}

func TestCatalogRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/catalog/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats struct {
		Categories []catalog.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	assert.Len(t, cats.Categories, 4)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/catalog/products?category_id=3&sort_by_stock=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products struct {
		Products []catalog.Product `json:"products"`
		Total    int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Equal(t, 2, products.Total)
	assert.Equal(t, lemonSoda, products.Products[0].ID)
	assert.Equal(t, tonicWater, products.Products[1].ID)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/catalog/products?price=0-3000&availability=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Equal(t, 4, products.Total)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/catalog/products?category_id=99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/catalog/products?availability=maybe", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func decodeView(t *testing.T, env envelope) storefront.View {
	t.Helper()
	var v storefront.View
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestStorefrontFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/storefront", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, sessionID)
	v := decodeView(t, env)
	assert.Equal(t, sessionID, v.SessionID)
	assert.Len(t, v.Products, 12)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/1/toggle", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	assert.True(t, v.Menu[0].Expanded)
	assert.Len(t, v.Menu[0].Children, 2)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/3/select", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	require.NotNil(t, v.Selected)
	assert.Equal(t, "Sparkling", v.Selected.Name)
	assert.Len(t, v.Products, 2)

	rec, env = srv.do(t, http.MethodPut, "/api/v1/storefront/filters", sessionID, `{"availability":"true"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	require.Len(t, v.Products, 1)
	assert.Equal(t, tonicWater, v.Products[0].Product.ID)

	rec, _ = srv.do(t, http.MethodPut, "/api/v1/storefront/filters", sessionID, `{"availability":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/1/toggle", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	assert.Nil(t, v.Selected)
	assert.False(t, v.Menu[0].Expanded)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/12/toggle", sessionID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/abc/select", sessionID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = srv.do(t, http.MethodPost, "/api/v1/storefront/categories/99/select", sessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = srv.do(t, http.MethodDelete, "/api/v1/storefront/selection", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeView(t, env).Selected)
}

type cartBody struct {
	Items []struct {
		Product  catalog.Product `json:"product"`
		Quantity int             `json:"quantity"`
	} `json:"items"`
	TotalItems int    `json:"total_items"`
	Subtotal   string `json:"subtotal"`
	Open       bool   `json:"open"`
}

func TestCartFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, _ := srv.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get(middleware.SessionHeader)

	for i := 0; i < 2; i++ {
		rec, _ = srv.do(t, http.MethodPost, "/api/v1/cart/items/"+lemonSoda, sessionID, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ = srv.do(t, http.MethodPost, "/api/v1/cart/items/"+tonicWater+"/increment", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env := srv.do(t, http.MethodPost, "/api/v1/cart/items/"+lemonSoda+"/decrement", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body cartBody
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 2, body.TotalItems)
	require.Len(t, body.Items, 2)
	assert.Equal(t, lemonSoda, body.Items[0].Product.ID)
	assert.Equal(t, "14408.00", body.Subtotal)

	raw, err := srv.store.Get(context.Background(), "session:"+sessionID+":cart")
	require.NoError(t, err)
	assert.Contains(t, raw, lemonSoda)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/cart/items/unknown", sessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/panel/toggle", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":true}`, string(env.Data))

	rec, env = srv.do(t, http.MethodGet, "/api/v1/storefront", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, env)
	assert.Equal(t, 2, v.CartCount)
	require.NotNil(t, v.Cart)

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/cart/items/"+tonicWater, sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/checkout", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt cartBody
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, 1, receipt.TotalItems)
	assert.Equal(t, "8958.00", receipt.Subtotal)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/cart", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 0, body.TotalItems)
	assert.True(t, body.Open)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/cart/panel/close", sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":false}`, string(env.Data))

	rec, _ = srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_mutations_total{op="add"} 2`)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/cart/items/"+lemonSoda, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Header().Get(middleware.SessionHeader)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, first, rec.Header().Get(middleware.SessionHeader))
	var body cartBody
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 0, body.TotalItems)
}

func TestFilterBodyAcceptsQuerySpellings(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, _ := srv.do(t, http.MethodGet, "/api/v1/storefront", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get(middleware.SessionHeader)

	rec, env := srv.do(t, http.MethodPut, "/api/v1/storefront/filters", sessionID, `{"availability":"TRUE","price_band":"0-3000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, env)
	assert.Equal(t, "true", v.Filters.Availability)
	assert.Len(t, v.Products, 4)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/catalog/products?price=0-3000&availability=TRUE", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Equal(t, 4, products.Total)

	rec, env = srv.do(t, http.MethodPut, "/api/v1/storefront/filters", sessionID, `{"availability":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, env)
	assert.Equal(t, "null", v.Filters.Availability)
	assert.Equal(t, "0-3000", string(v.Filters.PriceBand))
}

func TestOverlongProductIDIsRejected(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := srv.do(t, http.MethodPost, "/api/v1/cart/items/"+lemonSoda+strings.Repeat("x", 64), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/cart/items/"+strings.Repeat("y", 65), "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
