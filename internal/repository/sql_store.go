package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/skycomfort-server/internal/database"
)

// SQLStore is the MySQL-backed Store.
type SQLStore struct {
	db *sql.DB
	q  DBTX
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db, q: db} }

func (s *SQLStore) Users() UserRepository       { return NewUserRepo(s.q) }
func (s *SQLStore) Services() ServiceRepository { return NewServiceRepo(s.q) }
func (s *SQLStore) Orders() OrderRepository     { return NewOrderRepo(s.q) }
func (s *SQLStore) Payments() PaymentRepository { return NewPaymentRepo(s.q) }
func (s *SQLStore) Tokens() TokenRepository     { return NewTokenRepo(s.q) }

func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return fn(&SQLStore{db: s.db, q: tx})
	})
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
