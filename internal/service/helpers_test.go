package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	events   *queue.Recorder
	users    *UserService
	catalog  *CatalogService
	orders   *OrderService
	payments *PaymentService
	sync     *SyncService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	events := &queue.Recorder{}
	log := zap.NewNop()
	f := &fixture{store: store, events: events}
	f.users = NewUserService(store, 4)
	f.catalog = NewCatalogService(store)
	f.orders = NewOrderService(store, events, log)
	f.payments = NewPaymentService(store, events, log)
	f.sync = NewSyncService(f.orders, f.catalog, log)
	f.auth = NewAuthService(AuthConfig{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7}, f.users, store)
	return f
}

func (f *fixture) passenger(t *testing.T, email string) *model.User {
	t.Helper()
	flight, seat := "SK101", "12C"
	u, err := f.users.Register(context.Background(), RegisterInput{
		Name: "Passenger", Email: email, Username: email, Password: "secret",
		FlightID: &flight, SeatNumber: &seat,
	}, false)
	require.NoError(t, err)
	return u
}

func (f *fixture) staff(t *testing.T) *model.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Name: "Crew", Email: "crew@skycomfort.com", Username: "crew", Password: "secret", IsStaff: true,
	}, true)
	require.NoError(t, err)
	require.True(t, u.IsStaff)
	return u
}

func (f *fixture) service(t *testing.T, title, price string) *model.Service {
	t.Helper()
	sv := &model.Service{
		Title: title, Description: title, Price: decimal.RequireFromString(price),
		Type: model.ServiceMeal, Availability: true,
	}
	require.NoError(t, f.catalog.CreateService(context.Background(), sv))
	return sv
}

func (f *fixture) order(t *testing.T, userID uint64, items ...OrderItemInput) *model.Order {
	t.Helper()
	o, err := f.orders.CreateWithItems(context.Background(), CreateOrderInput{
		UserID: userID, FlightID: "SK101", SeatNumber: "12C", Items: items,
	})
	require.NoError(t, err)
	return o
}
