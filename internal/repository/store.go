package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can
// run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Filter narrows a FindAll call. Where holds column equality conditions;
// a zero Limit means no limit.
type Filter struct {
	Where  map[string]any
	Limit  int
	Offset int
}

// Eq returns a Filter with a single equality condition.
func Eq(column string, value any) Filter {
	return Filter{Where: map[string]any{column: value}}
}

// Page sets Limit and Offset from a 1-based page number.
func (f Filter) Page(page, limit int) Filter {
	if page < 1 {
		page = 1
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit
	return f
}

// CRUD is the generic contract shared by every entity repository.
// Update applies only the non-nil fields of patch and returns the fresh
// row. Delete reports whether a row was removed.
type CRUD[T any, P any] interface {
	FindAll(ctx context.Context, f Filter) ([]T, error)
	FindByID(ctx context.Context, id uint64) (*T, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, id uint64, patch P) (*T, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

type UserRepository interface {
	CRUD[model.User, model.UserPatch]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByFlightAndSeat(ctx context.Context, flightID, seatNumber string) (*model.User, error)
}

type ServiceRepository interface {
	CRUD[model.Service, model.ServicePatch]
	Search(ctx context.Context, term string) ([]model.Service, error)
	UpdatedSince(ctx context.Context, since time.Time) ([]model.Service, error)
}

type OrderRepository interface {
	CRUD[model.Order, model.OrderPatch]
	CreateItem(ctx context.Context, item *model.OrderItem) error
	// ItemsByOrderIDs groups the items of the given orders by order id,
	// optionally joining the catalog row of each item.
	ItemsByOrderIDs(ctx context.Context, orderIDs []uint64, withService bool) (map[uint64][]model.OrderItem, error)
}

type PaymentRepository interface {
	CRUD[model.Payment, model.PaymentPatch]
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
}

// TokenRepository persists refresh tokens by their SHA-256 hash.
type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	// RevokeByHash reports whether an active token was revoked by this call.
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Store is the unit of work handed to services. Repositories obtained from
// the Store passed to WithTx's callback all share one transaction, which
// commits when fn returns nil and rolls back otherwise. Calling WithTx on
// a transactional Store runs fn in the same transaction.
type Store interface {
	Users() UserRepository
	Services() ServiceRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Tokens() TokenRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
