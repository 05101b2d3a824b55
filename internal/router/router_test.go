package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/paybridge"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/repository/memory"
	"github.com/iliyamo/skycomfort-server/internal/service"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Results int             `json:"results"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	e     *echo.Echo
	users *service.UserService
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memory.New()
	log := zap.NewNop()
	events := &queue.Recorder{}
	users := service.NewUserService(store, 4)
	catalog := service.NewCatalogService(store)
	orders := service.NewOrderService(store, events, log)
	e := New(Deps{
		Env:      "test",
		Store:    store,
		Auth:     service.NewAuthService(service.AuthConfig{JWTSecret: "router-secret", AccessTTLMin: 15, RefreshTTLDays: 1}, users, store),
		Users:    users,
		Catalog:  catalog,
		Orders:   orders,
		Payments: service.NewPaymentService(store, events, log),
		Sync:     service.NewSyncService(orders, catalog, log),
		Bridge:   paybridge.NewChannel(paybridge.NewProcessor(paybridge.NewCardStore(), 0), log),
		Cache:    config.CacheConfig{Enabled: true},
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1000, RefillTokens: 1, RefillInterval: time.Second,
			TTL: time.Minute, KeyStrategy: "ip", Prefix: "rl",
		},
		Log: log,
	})
	return &server{e: e, users: users}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *server) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", echo.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func (s *server) passenger(t *testing.T, email string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"name": "Ada", "email": email, "username": email, "password": "secret",
		"flightId": "SK101", "seatNumber": "12C",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	return s.login(t, email, "secret")
}

func (s *server) crew(t *testing.T) string {
	t.Helper()
	_, err := s.users.Register(t.Context(), service.RegisterInput{
		Name: "Crew", Email: "crew@skycomfort.com", Username: "crew", Password: "secret", IsStaff: true,
	}, true)
	require.NoError(t, err)
	return s.login(t, "crew@skycomfort.com", "secret")
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Server is healthy", env.Message)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Cannot GET /api/nope", env.Message)
}

func TestMissingServiceIs404(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/api/services/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Service with ID 999 not found", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/services/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid ID format", env.Message)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	s := newServer(t)
	body := echo.Map{"name": "Ada", "email": "ada@example.com", "username": "ada", "password": "secret"}
	code, _ := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", env.Status)

	code, _ = s.do(t, http.MethodPost, "/api/auth/register", "", echo.Map{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthAndStaffGates(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/api/orders/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access denied. No token provided.", env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/orders/user", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	pax := s.passenger(t, "ada@example.com")
	code, env = s.do(t, http.MethodGet, "/api/orders", pax, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied. Staff privileges required.", env.Message)

	code, _ = s.do(t, http.MethodPost, "/api/services", pax, echo.Map{"title": "x", "price": 1, "type": "meal"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/orders/user", pax, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestOrderAndPaymentFlow(t *testing.T) {
	s := newServer(t)
	crew := s.crew(t)
	pax := s.passenger(t, "ada@example.com")
	other := s.passenger(t, "bob@example.com")

	code, env := s.do(t, http.MethodPost, "/api/services", crew, echo.Map{
		"title": "Premium Coffee", "description": "Freshly brewed", "price": 4.99, "type": "beverage", "category": "hot",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		Service model.Service `json:"service"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = s.do(t, http.MethodPost, "/api/orders", pax, echo.Map{
		"flightId": "SK101", "seatNumber": "12C",
		"items": []echo.Map{{"serviceId": created.Service.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var placed struct {
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, "14.97", placed.Order.TotalAmount.StringFixed(2))
	assert.Equal(t, model.OrderPending, placed.Order.Status)
	require.Len(t, placed.Order.Items, 1)

	orderPath := fmt.Sprintf("/api/orders/%d", placed.Order.ID)
	code, _ = s.do(t, http.MethodGet, orderPath, other, nil)
	assert.Equal(t, http.StatusForbidden, code, "orders are private to their owner")

	code, env = s.do(t, http.MethodPost, "/api/payments", pax, echo.Map{
		"orderId": placed.Order.ID, "transactionId": "TR123456", "amount": "14.97",
		"paymentMethod": "credit_card", "lastFourDigits": "4242",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(t, http.MethodGet, orderPath, pax, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, model.OrderProcessing, placed.Order.Status)
	assert.Len(t, placed.Order.Payments, 1)

	code, _ = s.do(t, http.MethodPost, "/api/payments", pax, echo.Map{
		"orderId": placed.Order.ID, "transactionId": "TR123456", "amount": 1, "paymentMethod": "credit_card",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/orders?limit=500", crew, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Results)

	code, env = s.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", placed.Order.ID), crew, echo.Map{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Valid order status is required", env.Message)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/services/%d", created.Service.ID), crew, nil)
	assert.Equal(t, http.StatusConflict, code, "ordered services cannot be deleted")
}

func TestSyncEndpoint(t *testing.T) {
	s := newServer(t)
	crew := s.crew(t)
	pax := s.passenger(t, "ada@example.com")

	code, env := s.do(t, http.MethodPost, "/api/services", crew, echo.Map{"title": "Comfort Kit", "price": "14.99", "type": "comfort"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		Service model.Service `json:"service"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = s.do(t, http.MethodPost, "/api/auth/validate", "", echo.Map{"token": pax})
	require.Equal(t, http.StatusOK, code)
	var who struct {
		Valid bool `json:"valid"`
		User  struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &who))
	assert.True(t, who.Valid)

	code, env = s.do(t, http.MethodPost, "/api/sync", pax, echo.Map{
		"userId": who.User.ID,
		"items": []echo.Map{
			{"entityType": "orders", "entityId": "local-1", "operation": "insert",
				"data": echo.Map{"flightId": "SK101", "seatNumber": "12C", "items": []echo.Map{{"serviceId": created.Service.ID, "quantity": 1}}}},
			{"entityType": "orders", "entityId": "local-2", "operation": "insert", "data": "oops"},
		},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 2, env.Results)
	var res service.SyncResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.SyncResults, 2)
	assert.True(t, res.SyncResults[0].Success)
	assert.False(t, res.SyncResults[1].Success)
	assert.Len(t, res.Services, 1)

	code, env = s.do(t, http.MethodGet, "/api/orders/user", pax, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Results)

	code, env = s.do(t, http.MethodPost, "/api/sync", pax, echo.Map{"userId": who.User.ID + 100, "items": []echo.Map{}})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/sync/services?lastSync=not-a-date", pax, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Results)
}

func TestBridgeEndpoint(t *testing.T) {
	s := newServer(t)
	pax := s.passenger(t, "ada@example.com")

	code, env := s.do(t, http.MethodPost, "/api/bridge/payment", pax, echo.Map{
		"method": "processPayment",
		"arguments": echo.Map{
			"cardNumber": "4111 1111 1111 1111", "expiryDate": "08/29", "cvv": "321",
			"cardholderName": "Ada Lovelace", "amount": 12.5,
		},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var out struct {
		Result paybridge.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "1111", out.Result.Last4Digits)

	code, env = s.do(t, http.MethodPost, "/api/bridge/payment", pax, echo.Map{"method": "processPayment", "arguments": echo.Map{"cardNumber": "1"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/bridge/payment", pax, echo.Map{"method": "refund"})
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestLogoutAllEndpoint(t *testing.T) {
	s := newServer(t)
	s.passenger(t, "ada@example.com")

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", echo.Map{"email": "ada@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var session struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/auth/logout-all", session.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", echo.Map{"refreshToken": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
}
