package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/skycomfort-server/internal/database"
	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test; skipped with -short")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "testpass",
			"MYSQL_DATABASE":      "skycomfort_test",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(2 * time.Minute),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := mysqlC.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	db, err := database.Open(ctx, database.Options{
		User: "root", Pass: "testpass", Host: host, Port: port.Port(), Name: "skycomfort_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(ctx, db, "up")
	require.NoError(t, err)
	return db
}

func TestSQLStore(t *testing.T) {
	db := setupMySQL(t)
	store := repository.NewSQLStore(db)
	ctx := context.Background()

	flight, seat := "SC101", "12A"
	u := &model.User{
		Name: "Ada", Email: "ada@example.com", Username: "ada", PasswordHash: "hash",
		FlightID: &flight, SeatNumber: &seat, IsActive: true,
	}
	require.NoError(t, store.Users().Create(ctx, u))
	require.NotZero(t, u.ID)

	t.Run("duplicate email", func(t *testing.T) {
		dup := &model.User{Name: "Ada 2", Email: "ada@example.com", Username: "ada2", PasswordHash: "hash"}
		assert.ErrorIs(t, store.Users().Create(ctx, dup), repository.ErrDuplicate)
	})

	t.Run("seat lookup", func(t *testing.T) {
		got, err := store.Users().FindByFlightAndSeat(ctx, flight, seat)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = store.Users().FindByFlightAndSeat(ctx, flight, "99Z")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	coffee := &model.Service{
		Title: "Coffee", Description: "Freshly brewed", Price: decimal.RequireFromString("4.99"),
		Type: model.ServiceBeverage, Availability: true,
	}
	require.NoError(t, store.Services().Create(ctx, coffee))

	t.Run("service update keeps untouched columns", func(t *testing.T) {
		price := decimal.RequireFromString("5.49")
		got, err := store.Services().Update(ctx, coffee.ID, model.ServicePatch{Price: &price})
		require.NoError(t, err)
		assert.True(t, price.Equal(got.Price))
		assert.Equal(t, "Coffee", got.Title)

		hits, err := store.Services().Search(ctx, "brew")
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	var orderID uint64
	t.Run("order with items", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx repository.Store) error {
			o := &model.Order{UserID: u.ID, FlightID: flight, SeatNumber: seat, Status: model.OrderPending,
				TotalAmount: decimal.RequireFromString("10.98")}
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
			orderID = o.ID
			return tx.Orders().CreateItem(ctx, &model.OrderItem{
				OrderID: o.ID, ServiceID: coffee.ID, Quantity: 2, Price: decimal.RequireFromString("5.49"),
			})
		})
		require.NoError(t, err)

		items, err := store.Orders().ItemsByOrderIDs(ctx, []uint64{orderID}, true)
		require.NoError(t, err)
		require.Len(t, items[orderID], 1)
		assert.Equal(t, "Coffee", items[orderID][0].Service.Title)
	})

	t.Run("referenced service cannot be deleted", func(t *testing.T) {
		_, err := store.Services().Delete(ctx, coffee.ID)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("rollback discards the whole unit", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTx(ctx, func(tx repository.Store) error {
			o := &model.Order{UserID: u.ID, FlightID: flight, SeatNumber: seat, Status: model.OrderPending}
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		orders, err := store.Orders().FindAll(ctx, repository.Eq("user_id", u.ID))
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("transaction id is unique", func(t *testing.T) {
		p := &model.Payment{OrderID: orderID, Amount: decimal.RequireFromString("10.98"),
			PaymentMethod: model.MethodCreditCard, TransactionID: "TR123456", Status: model.PaymentCompleted}
		require.NoError(t, store.Payments().Create(ctx, p))

		again := *p
		again.ID = 0
		assert.ErrorIs(t, store.Payments().Create(ctx, &again), repository.ErrDuplicate)

		got, err := store.Payments().FindByTransactionID(ctx, "TR123456")
		require.NoError(t, err)
		assert.Equal(t, orderID, got.OrderID)
	})

	t.Run("refresh tokens", func(t *testing.T) {
		require.NoError(t, store.Tokens().StoreRefresh(ctx, u.ID, "h1", time.Now().Add(time.Hour)))
		id, err := store.Tokens().ValidateRefresh(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, id)

		require.NoError(t, store.Tokens().StoreRefresh(ctx, u.ID, "h2", time.Now().Add(time.Hour)))
		revoked, err := store.Tokens().RevokeByHash(ctx, "h2")
		require.NoError(t, err)
		assert.True(t, revoked)
		revoked, err = store.Tokens().RevokeByHash(ctx, "h2")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, store.Tokens().RevokeAllForUser(ctx, u.ID))
		_, err = store.Tokens().ValidateRefresh(ctx, "h1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
