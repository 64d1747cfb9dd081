package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/clock"
	"julianmorley.ca/con-plar/storefront/pkg/config"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/orders"
	"julianmorley.ca/con-plar/storefront/pkg/prefs"
	"julianmorley.ca/con-plar/storefront/pkg/query"
	"julianmorley.ca/con-plar/storefront/pkg/session"
)

const declinedCard = "4000000000000002"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cat, err := catalog.Static()
	require.NoError(t, err)
	history, err := orders.StaticHistory()
	require.NoError(t, err)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := session.NewRegistry(session.Options{
		Clock: clock.Instant{},
		Processor: &checkout.SimulatedProcessor{
			Clock:         clock.Instant{},
			DeclinedCards: []string{declinedCard},
		},
		Logger:  quiet,
		History: history,
	})

	engine := New(Deps{
		Config:   config.Config{Env: "test", AllowOrigins: []string{"http://localhost:3000"}},
		Catalog:  cat,
		Sessions: registry,
		Suggest:  query.DefaultSuggestOptions(),
		Logger:   quiet,
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func (s *testServer) startSession() string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/sessions", nil)
	require.Equal(s.t, http.StatusCreated, w.Code)
	var view struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &view))
	require.NotEmpty(s.t, view.SessionID)
	return "/api/sessions/" + view.SessionID
}

var validShipping = models.ShippingInfo{
	FirstName: "John",
	LastName:  "Doe",
	Email:     "john@example.com",
	Phone:     "+1 555 0100",
	Address:   "123 Main St",
	City:      "New York",
	State:     "NY",
	ZipCode:   "10001",
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data := decode[map[string]any](t, env)
	assert.Equal(t, "OK", data["status"])
	assert.EqualValues(t, 10, data["products"])
}

func TestGetProducts(t *testing.T) {
	s := newTestServer(t)

	t.Run("category, brand and sort", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/products?category=Electronics&brand=Apple&sort=price-high", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
		assert.Equal(t, []int64{2, 1, 7}, ids(decode[[]models.Product](t, env)))
	})

	t.Run("free text", func(t *testing.T) {
		_, env := s.do(http.MethodGet, "/api/products?q=%20SONY%20", nil)
		assert.Equal(t, []int64{3}, ids(decode[[]models.Product](t, env)))
	})

	t.Run("price range", func(t *testing.T) {
		_, env := s.do(http.MethodGet, "/api/products?min_price=100&max_price=200&sort=price-low", nil)
		assert.Equal(t, []int64{4, 8}, ids(decode[[]models.Product](t, env)))
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/products?category=Sports%20%26%20Outdoors", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", string(env.Data))
	})

	t.Run("malformed filters", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/products?min_price=abc&in_stock=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		require.Len(t, env.Errors, 2)
		assert.Equal(t, "min_price", env.Errors[0].Field)
		assert.Equal(t, "in_stock", env.Errors[1].Field)
	})

	t.Run("inverted price range", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/products?min_price=500&max_price=100", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotEmpty(t, env.Errors)
		assert.Equal(t, "ltefield", env.Errors[0].Code)
	})

	t.Run("non-finite rating", func(t *testing.T) {
		for _, raw := range []string{"NaN", "Inf", "-inf"} {
			w, env := s.do(http.MethodGet, "/api/products?rating="+raw, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
			require.Len(t, env.Errors, 1, raw)
			assert.Equal(t, "rating", env.Errors[0].Field)
		}
	})
}

func TestGetProductByID(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/products/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sony WH-1000XM5", decode[models.Product](t, env).Name)

	w, env = s.do(http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", env.Message)

	w, _ = s.do(http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFacetsAndCategories(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodGet, "/api/products/facets", nil)
	facets := decode[models.Facets](t, env)
	assert.Equal(t, "2499.00", facets.MaxPrice.StringFixed(2))
	assert.Contains(t, facets.Brands, models.BrandFacet{Brand: "Apple", Count: 3})

	_, env = s.do(http.MethodGet, "/api/categories", nil)
	assert.Len(t, decode[[]models.Category](t, env), 4)
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodGet, "/api/search/suggestions?q=samsng", nil)
	assert.Equal(t, []int64{5}, ids(decode[models.Suggestions](t, env).Products))

	_, env = s.do(http.MethodGet, "/api/search/suggestions", nil)
	empty := decode[models.Suggestions](t, env)
	assert.Empty(t, empty.Products)
	assert.Equal(t, query.TrendingSearches, empty.Trending)
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/sessions/6f1c1a9e-0000-4000-8000-000000000000/cart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", env.Message)

	w, _ = s.do(http.MethodPost, "/api/sessions", map[string]string{"session_id": "not-a-uuid"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumeSession(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()
	id := base[len("/api/sessions/"):]

	s.do(http.MethodPost, base+"/wishlist/items", models.AddToWishlistRequest{ProductID: 4})

	w, env := s.do(http.MethodPost, "/api/sessions", map[string]string{"session_id": id})
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		SessionID string                 `json:"session_id"`
		Wishlist  models.WishlistSummary `json:"wishlist"`
		Theme     string                 `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, id, view.SessionID)
	assert.Equal(t, 1, view.Wishlist.TotalItems)
	assert.Equal(t, prefs.ThemeLight, view.Theme)
}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	w, env := s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, w.Code)
	s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 1})
	_, env = s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 4})

	summary := decode[models.CartSummary](t, env)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, "2548.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "2751.84", summary.Total.StringFixed(2))

	t.Run("update quantity to zero removes the line", func(t *testing.T) {
		_, env := s.do(http.MethodPut, base+"/cart/items/1", map[string]int{"quantity": 0})
		summary := decode[models.CartSummary](t, env)
		require.Len(t, summary.Items, 1)
		assert.Equal(t, int64(4), summary.Items[0].Product.ID)
	})

	t.Run("unknown product", func(t *testing.T) {
		w, _ := s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing product id", func(t *testing.T) {
		w, env := s.do(http.MethodPost, base+"/cart/items", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "product_id", env.Errors[0].Field)
		assert.Equal(t, "required", env.Errors[0].Code)
	})

	t.Run("missing quantity", func(t *testing.T) {
		w, _ := s.do(http.MethodPut, base+"/cart/items/4", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("quantity above the line cap", func(t *testing.T) {
		w, env := s.do(http.MethodPut, base+"/cart/items/4", map[string]int64{"quantity": 1_000_000_000})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "quantity", env.Errors[0].Field)
		assert.Equal(t, "max", env.Errors[0].Code)

		_, env = s.do(http.MethodGet, base+"/cart", nil)
		summary := decode[models.CartSummary](t, env)
		require.Len(t, summary.Items, 1)
		assert.Equal(t, 1, summary.Items[0].Quantity)
	})

	t.Run("visibility", func(t *testing.T) {
		_, env := s.do(http.MethodPost, base+"/cart/toggle", nil)
		assert.True(t, decode[models.CartSummary](t, env).IsOpen)
		_, env = s.do(http.MethodPost, base+"/cart/close", nil)
		assert.False(t, decode[models.CartSummary](t, env).IsOpen)
	})

	t.Run("clear", func(t *testing.T) {
		_, env := s.do(http.MethodDelete, base+"/cart", nil)
		assert.Empty(t, decode[models.CartSummary](t, env).Items)
	})
}

func TestWishlistEndpoints(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	s.do(http.MethodPost, base+"/wishlist/items", models.AddToWishlistRequest{ProductID: 4})
	_, env := s.do(http.MethodPost, base+"/wishlist/items", models.AddToWishlistRequest{ProductID: 4})
	assert.Equal(t, 1, decode[models.WishlistSummary](t, env).TotalItems)

	_, env = s.do(http.MethodPost, base+"/wishlist/open", nil)
	assert.True(t, decode[models.WishlistSummary](t, env).IsOpen)

	_, env = s.do(http.MethodDelete, base+"/wishlist/items/4", nil)
	assert.Empty(t, decode[models.WishlistSummary](t, env).Items)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	w, _ := s.do(http.MethodPost, base+"/checkout/payment", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 3})

	invalid := validShipping
	invalid.Email = ""
	w, env := s.do(http.MethodPost, base+"/checkout/shipping", invalid)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "email", env.Errors[0].Field)

	w, env = s.do(http.MethodPost, base+"/checkout/shipping", validShipping)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.StepPayment, decode[checkout.View](t, env).Step)

	w, env = s.do(http.MethodPost, base+"/checkout/payment?wait=true", models.PaymentDetails{CardNumber: "4242424242424242"})
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[checkout.View](t, env)
	assert.Equal(t, checkout.StepCompleted, view.Step)
	require.NotNil(t, view.Order)
	assert.Equal(t, "430.92", view.Order.Total.StringFixed(2))
	assert.Equal(t, models.EstimatedDelivery, view.Order.EstimatedDelivery)

	_, env = s.do(http.MethodGet, base+"/cart", nil)
	assert.Empty(t, decode[models.CartSummary](t, env).Items)

	_, env = s.do(http.MethodGet, base+"/navigation", nil)
	route := decode[session.Route](t, env)
	assert.Equal(t, checkout.ConfirmationRoute, route.Path)

	w, env = s.do(http.MethodPost, base+"/checkout/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.StepShipping, decode[checkout.View](t, env).Step)
}

func TestOrderHistory(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	orderIDs := func() []string {
		w, env := s.do(http.MethodGet, base+"/orders", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []string
		for _, o := range decode[[]models.OrderRecord](t, env) {
			out = append(out, o.ID)
		}
		return out
	}

	assert.Equal(t, []string{"ORD-001", "ORD-002", "ORD-003"}, orderIDs())

	s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 4})
	s.do(http.MethodPost, base+"/checkout/shipping", validShipping)
	w, env := s.do(http.MethodPost, base+"/checkout/payment?wait=true", models.PaymentDetails{CardNumber: "4242424242424242"})
	require.Equal(t, http.StatusOK, w.Code)
	placed := decode[checkout.View](t, env).Order
	require.NotNil(t, placed)

	_, env = s.do(http.MethodGet, base+"/orders", nil)
	history := decode[[]models.OrderRecord](t, env)
	require.Len(t, history, 4)
	assert.Equal(t, orders.RecordID(placed.ID), history[0].ID)
	assert.Equal(t, models.OrderProcessing, history[0].Status)
	assert.True(t, placed.Total.Equal(history[0].Total))
	require.Len(t, history[0].Items, 1)
	assert.Equal(t, int64(4), history[0].Items[0].ProductID)

	s.do(http.MethodPost, base+"/auth/logout", nil)
	assert.Equal(t, []string{orders.RecordID(placed.ID)}, orderIDs())
}

func TestCheckoutDeclined(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	s.do(http.MethodPost, base+"/cart/items", models.AddToCartRequest{ProductID: 10})
	s.do(http.MethodPost, base+"/checkout/shipping", validShipping)

	w, env := s.do(http.MethodPost, base+"/checkout/payment?wait=true", models.PaymentDetails{CardNumber: declinedCard})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, env.Message, "declined")

	_, env = s.do(http.MethodGet, base+"/checkout", nil)
	assert.Equal(t, checkout.StepPayment, decode[checkout.View](t, env).Step)

	_, env = s.do(http.MethodGet, base+"/cart", nil)
	assert.Len(t, decode[models.CartSummary](t, env).Items, 1)
}

func TestCheckoutBackAndCancel(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	w, _ := s.do(http.MethodPost, base+"/checkout/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	s.do(http.MethodPost, base+"/checkout/shipping", validShipping)
	w, env := s.do(http.MethodPost, base+"/checkout/back", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[checkout.View](t, env)
	assert.Equal(t, checkout.StepShipping, view.Step)
	assert.Equal(t, validShipping, view.Shipping)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	_, env := s.do(http.MethodGet, base+"/auth", nil)
	assert.True(t, decode[models.AuthSession](t, env).IsAuthenticated)

	_, env = s.do(http.MethodPost, base+"/auth/logout", nil)
	assert.False(t, decode[models.AuthSession](t, env).IsAuthenticated)

	w, _ := s.do(http.MethodPut, base+"/auth/preferences", models.Preferences{Currency: "USD", Language: "English"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, base+"/auth/login", map[string]string{"email": "a@b.co"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, base+"/auth/register", models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "engine"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode[models.AuthSession](t, env).User.Name)

	s.do(http.MethodPost, base+"/auth/logout", nil)
	w, env = s.do(http.MethodPost, base+"/auth/login", models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.FailureMessage, env.Message)

	w, _ = s.do(http.MethodPost, base+"/auth/login", models.LoginRequest{Email: "ada@example.com", Password: "engine"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPut, base+"/auth/preferences", models.Preferences{Currency: "EUR", Language: "Deutsch", DefaultView: "list"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EUR", decode[models.AuthSession](t, env).User.Preferences.Currency)
}

func TestThemeEndpoints(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	_, env := s.do(http.MethodGet, base+"/settings/theme", nil)
	assert.Equal(t, prefs.ThemeLight, decode[prefs.Prefs](t, env).Theme)

	w, env := s.do(http.MethodPut, base+"/settings/theme", prefs.Prefs{Theme: "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, prefs.ThemeDark, decode[prefs.Prefs](t, env).Theme)

	w, _ = s.do(http.MethodPut, base+"/settings/theme", prefs.Prefs{Theme: "sepia"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = s.do(http.MethodGet, base+"/settings/theme", nil)
	assert.Equal(t, prefs.ThemeDark, decode[prefs.Prefs](t, env).Theme)
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t)
	base := s.startSession()

	_, env := s.do(http.MethodGet, base+"/chat", nil)
	assert.Equal(t, []chat.Message{{From: chat.FromBot, Text: chat.Greeting}}, decode[[]chat.Message](t, env))

	w, env := s.do(http.MethodPost, base+"/chat", map[string]string{"message": "Where is my order?"})
	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]chat.Message](t, env)
	require.Len(t, messages, 3)
	assert.Equal(t, chat.Message{From: chat.FromBot, Text: chat.CannedReply}, messages[2])

	w, _ = s.do(http.MethodPost, base+"/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)
}
