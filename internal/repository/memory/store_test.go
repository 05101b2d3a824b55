package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

func seedUserAndService(t *testing.T, s *Store) (*model.User, *model.Service) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Name: "Ada", Email: " Ada@Example.com ", Username: "ada", PasswordHash: "x", IsActive: true}
	require.NoError(t, s.Users().Create(ctx, u))
	sv := &model.Service{Title: "Coffee", Price: decimal.RequireFromString("4.99"), Type: model.ServiceBeverage, Availability: true}
	require.NoError(t, s.Services().Create(ctx, sv))
	return u, sv
}

func TestUserEmailIsNormalizedAndUnique(t *testing.T) {
	s := New()
	u, _ := seedUserAndService(t, s)
	assert.Equal(t, "ada@example.com", u.Email)

	got, err := s.Users().FindByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := &model.User{Name: "Other", Email: "ada@example.com", Username: "o"}
	err = s.Users().Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, sv := seedUserAndService(t, s)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repository.Store) error {
		o := &model.Order{UserID: u.ID, FlightID: "SK101", SeatNumber: "1A"}
		require.NoError(t, tx.Orders().Create(ctx, o))
		require.NoError(t, tx.Orders().CreateItem(ctx, &model.OrderItem{OrderID: o.ID, ServiceID: sv.ID, Quantity: 1, Price: sv.Price}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	orders, err := s.Orders().FindAll(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWithTxCommits(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := seedUserAndService(t, s)

	err := s.WithTx(ctx, func(tx repository.Store) error {
		return tx.Orders().Create(ctx, &model.Order{UserID: u.ID, FlightID: "SK101", SeatNumber: "1A"})
	})
	require.NoError(t, err)

	orders, err := s.Orders().FindAll(ctx, repository.Eq("user_id", u.ID))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderPending, orders[0].Status)
}

func TestServiceDeleteConflictsWhileReferenced(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, sv := seedUserAndService(t, s)
	o := &model.Order{UserID: u.ID, FlightID: "SK101", SeatNumber: "1A"}
	require.NoError(t, s.Orders().Create(ctx, o))
	require.NoError(t, s.Orders().CreateItem(ctx, &model.OrderItem{OrderID: o.ID, ServiceID: sv.ID, Quantity: 2, Price: sv.Price}))

	_, err := s.Services().Delete(ctx, sv.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	ok, err := s.Services().Delete(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterRejectsUnknownColumn(t *testing.T) {
	ctx := context.Background()
	bad := repository.Eq("password", "x")
	s := New()

	// Empty tables must reject the filter just like the SQL store does.
	_, err := s.Orders().FindAll(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)
	_, err = s.Users().FindAll(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)
	_, err = s.Services().FindAll(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)
	_, err = s.Payments().FindAll(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)

	seedUserAndService(t, s)
	_, err = s.Services().FindAll(ctx, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)
}

func TestOrdersNewestFirstAndPaged(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := seedUserAndService(t, s)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Orders().Create(ctx, &model.Order{UserID: u.ID, FlightID: "SK101", SeatNumber: "1A"}))
	}
	page, err := s.Orders().FindAll(ctx, repository.Filter{}.Page(1, 2))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].ID)
	assert.Equal(t, uint64(2), page[1].ID)

	page, err = s.Orders().FindAll(ctx, repository.Filter{}.Page(2, 2))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(1), page[0].ID)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := seedUserAndService(t, s)
	tokens := s.Tokens()

	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "h1", s.st.now().Add(time.Hour)))
	id, err := tokens.ValidateRefresh(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	revoked, err := tokens.RevokeByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = tokens.RevokeByHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, revoked, "a token is revoked once")
	_, err = tokens.ValidateRefresh(ctx, "h1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "h2", s.st.now().Add(-time.Minute)))
	_, err = tokens.ValidateRefresh(ctx, "h2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
