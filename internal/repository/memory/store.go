// Package memory is an in-process Store used by tests and by the server
// when DB_DRIVER=memory. Transactions snapshot the whole dataset and
// restore it when the callback fails.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

type tokenRow struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type dataset struct {
	users    map[uint64]model.User
	services map[uint64]model.Service
	orders   map[uint64]model.Order
	items    map[uint64]model.OrderItem
	payments map[uint64]model.Payment
	tokens   map[string]tokenRow
	seq      map[string]uint64
}

func newDataset() *dataset {
	return &dataset{
		users:    map[uint64]model.User{},
		services: map[uint64]model.Service{},
		orders:   map[uint64]model.Order{},
		items:    map[uint64]model.OrderItem{},
		payments: map[uint64]model.Payment{},
		tokens:   map[string]tokenRow{},
		seq:      map[string]uint64{},
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		users:    maps.Clone(d.users),
		services: maps.Clone(d.services),
		orders:   maps.Clone(d.orders),
		items:    maps.Clone(d.items),
		payments: maps.Clone(d.payments),
		tokens:   maps.Clone(d.tokens),
		seq:      maps.Clone(d.seq),
	}
}

func (d *dataset) next(table string) uint64 {
	d.seq[table]++
	return d.seq[table]
}

type state struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

// Store implements repository.Store. The zero value is not usable; call
// New.
type Store struct {
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{data: newDataset(), now: func() time.Time { return time.Now().UTC() }}}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) { s.st.now = now }

// lock serialises access. Inside a transaction the lock is already held
// by WithTx for the whole callback.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.st.mu.Lock()
	return s.st.mu.Unlock
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Services() repository.ServiceRepository { return serviceRepo{s} }
func (s *Store) Orders() repository.OrderRepository     { return orderRepo{s} }
func (s *Store) Payments() repository.PaymentRepository { return paymentRepo{s} }
func (s *Store) Tokens() repository.TokenRepository     { return tokenRepo{s} }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	snapshot := s.st.data.clone()
	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func paginate[T any](in []T, f repository.Filter) []T {
	if f.Offset > 0 {
		if f.Offset >= len(in) {
			return nil
		}
		in = in[f.Offset:]
	}
	if f.Limit > 0 && len(in) > f.Limit {
		in = in[:f.Limit]
	}
	return in
}

// checkFilter rejects conditions on columns outside allowed, whether or
// not any row would be compared.
func checkFilter(f repository.Filter, allowed map[string]bool) error {
	for col := range f.Where {
		if !allowed[col] {
			return fmt.Errorf("%w: %s", repository.ErrInvalidFilter, col)
		}
	}
	return nil
}

// matches compares each Where condition against the value column(col)
// reports. Values are compared by their printed form so named string
// types match plain strings.
func matches(f repository.Filter, column func(string) any) bool {
	for col, want := range f.Where {
		if fmt.Sprint(column(col)) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func newestFirst(aAt time.Time, aID uint64, bAt time.Time, bID uint64) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return aID > bID
}

func sortByID[T any](in []T, id func(T) uint64) {
	sort.Slice(in, func(i, j int) bool { return id(in[i]) < id(in[j]) })
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
