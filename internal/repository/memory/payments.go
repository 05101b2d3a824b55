package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

var paymentColumns = map[string]bool{"order_id": true, "status": true, "payment_method": true}

type paymentRepo struct{ s *Store }

func paymentColumn(p model.Payment) func(string) any {
	return func(col string) any {
		switch col {
		case "order_id":
			return p.OrderID
		case "status":
			return p.Status
		case "payment_method":
			return p.PaymentMethod
		}
		return nil
	}
}

func (r paymentRepo) FindAll(_ context.Context, f repository.Filter) ([]model.Payment, error) {
	defer r.s.lock()()
	if err := checkFilter(f, paymentColumns); err != nil {
		return nil, err
	}
	var out []model.Payment
	for _, p := range r.s.st.data.payments {
		if matches(f, paymentColumn(p)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, f), nil
}

func (r paymentRepo) FindByID(_ context.Context, id uint64) (*model.Payment, error) {
	defer r.s.lock()()
	p, ok := r.s.st.data.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r paymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*model.Payment, error) {
	defer r.s.lock()()
	for _, p := range r.s.st.data.payments {
		if p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r paymentRepo) Create(_ context.Context, p *model.Payment) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.orders[p.OrderID]; !ok {
		return repository.ErrInvalidReference
	}
	for _, other := range d.payments {
		if other.TransactionID == p.TransactionID {
			return repository.ErrDuplicate
		}
	}
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	now := r.s.st.now()
	p.ID = d.next("payments")
	p.CreatedAt, p.UpdatedAt = now, now
	p.Metadata = p.Metadata.Clone()
	stored := *p
	stored.Order = nil
	d.payments[p.ID] = stored
	return nil
}

func (r paymentRepo) Update(_ context.Context, id uint64, patch model.PaymentPatch) (*model.Payment, error) {
	defer r.s.lock()()
	d := r.s.st.data
	p, ok := d.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Metadata != nil {
		p.Metadata = patch.Metadata.Clone()
	}
	p.UpdatedAt = r.s.st.now()
	d.payments[id] = p
	return &p, nil
}

func (r paymentRepo) Delete(_ context.Context, id uint64) (bool, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.payments[id]; !ok {
		return false, nil
	}
	delete(d.payments, id)
	return true, nil
}
