package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

var orderColumns = map[string]bool{"user_id": true, "flight_id": true, "seat_number": true, "status": true}

type orderRepo struct{ s *Store }

func orderColumn(o model.Order) func(string) any {
	return func(col string) any {
		switch col {
		case "user_id":
			return o.UserID
		case "flight_id":
			return o.FlightID
		case "seat_number":
			return o.SeatNumber
		case "status":
			return o.Status
		}
		return nil
	}
}

func (r orderRepo) FindAll(_ context.Context, f repository.Filter) ([]model.Order, error) {
	defer r.s.lock()()
	if err := checkFilter(f, orderColumns); err != nil {
		return nil, err
	}
	var out []model.Order
	for _, o := range r.s.st.data.orders {
		if matches(f, orderColumn(o)) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, f), nil
}

func (r orderRepo) FindByID(_ context.Context, id uint64) (*model.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.st.data.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r orderRepo) Create(_ context.Context, o *model.Order) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[o.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	now := r.s.st.now()
	o.ID = d.next("orders")
	o.CreatedAt, o.UpdatedAt = now, now
	o.Items, o.Payments, o.User = nil, nil, nil
	d.orders[o.ID] = *o
	return nil
}

func (r orderRepo) Update(_ context.Context, id uint64, p model.OrderPatch) (*model.Order, error) {
	defer r.s.lock()()
	d := r.s.st.data
	o, ok := d.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.FlightID != nil {
		o.FlightID = *p.FlightID
	}
	if p.SeatNumber != nil {
		o.SeatNumber = *p.SeatNumber
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Notes != nil {
		v := *p.Notes
		o.Notes = &v
	}
	if p.TotalAmount != nil {
		o.TotalAmount = *p.TotalAmount
	}
	o.UpdatedAt = r.s.st.now()
	d.orders[id] = o
	return &o, nil
}

func (r orderRepo) Delete(_ context.Context, id uint64) (bool, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.orders[id]; !ok {
		return false, nil
	}
	deleteOrder(d, id)
	return true, nil
}

// deleteOrder removes an order with its items and payments.
func deleteOrder(d *dataset, id uint64) {
	delete(d.orders, id)
	for iid, it := range d.items {
		if it.OrderID == id {
			delete(d.items, iid)
		}
	}
	for pid, p := range d.payments {
		if p.OrderID == id {
			delete(d.payments, pid)
		}
	}
}

func (r orderRepo) CreateItem(_ context.Context, it *model.OrderItem) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.orders[it.OrderID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := d.services[it.ServiceID]; !ok {
		return repository.ErrInvalidReference
	}
	now := r.s.st.now()
	it.ID = d.next("order_items")
	it.CreatedAt, it.UpdatedAt = now, now
	stored := *it
	stored.Service = nil
	d.items[it.ID] = stored
	return nil
}

func (r orderRepo) ItemsByOrderIDs(_ context.Context, orderIDs []uint64, withService bool) (map[uint64][]model.OrderItem, error) {
	defer r.s.lock()()
	d := r.s.st.data
	want := make(map[uint64]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	var items []model.OrderItem
	for _, it := range d.items {
		if want[it.OrderID] {
			items = append(items, it)
		}
	}
	sortByID(items, func(it model.OrderItem) uint64 { return it.ID })

	out := make(map[uint64][]model.OrderItem, len(orderIDs))
	for _, it := range items {
		if withService {
			if sv, ok := d.services[it.ServiceID]; ok {
				it.Service = &sv
			}
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}
