package repository

import (
	"context"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

const orderColumns = "id, user_id, flight_id, seat_number, status, total_amount, notes, created_at, updated_at"

var orderFilterColumns = map[string]bool{"user_id": true, "flight_id": true, "seat_number": true, "status": true}

// OrderRepo reads and writes orders and their order_items.
type OrderRepo struct{ q DBTX }

func NewOrderRepo(q DBTX) *OrderRepo { return &OrderRepo{q: q} }

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.FlightID, &o.SeatNumber, &o.Status,
		&o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindAll returns matching orders, newest first.
func (r *OrderRepo) FindAll(ctx context.Context, f Filter) ([]model.Order, error) {
	where, args, err := whereClause(f, orderFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders"+where+" ORDER BY created_at DESC, id DESC"+limitClause(f), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ? LIMIT 1", id))
	return o, translate(err)
}

func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO orders (user_id, flight_id, seat_number, status, total_amount, notes) VALUES (?, ?, ?, ?, ?, ?)",
		o.UserID, o.FlightID, o.SeatNumber, o.Status, o.TotalAmount, o.Notes)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.FindByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

func (r *OrderRepo) Update(ctx context.Context, id uint64, p model.OrderPatch) (*model.Order, error) {
	var set setList
	if p.FlightID != nil {
		set.add("flight_id", *p.FlightID)
	}
	if p.SeatNumber != nil {
		set.add("seat_number", *p.SeatNumber)
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.Notes != nil {
		set.add("notes", *p.Notes)
	}
	if p.TotalAmount != nil {
		set.add("total_amount", *p.TotalAmount)
	}
	if !set.empty() {
		if _, err := r.q.ExecContext(ctx, "UPDATE orders SET "+set.sql()+" WHERE id = ?", append(set.args, id)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the order; items and payments cascade.
func (r *OrderRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CreateItem inserts one order line. The caller supplies the captured
// unit price.
func (r *OrderRepo) CreateItem(ctx context.Context, it *model.OrderItem) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO order_items (order_id, service_id, quantity, price, notes) VALUES (?, ?, ?, ?, ?)",
		it.OrderID, it.ServiceID, it.Quantity, it.Price, it.Notes)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	err = r.q.QueryRowContext(ctx, "SELECT created_at, updated_at FROM order_items WHERE id = ?", id).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	it.ID = uint64(id)
	return nil
}

func (r *OrderRepo) ItemsByOrderIDs(ctx context.Context, orderIDs []uint64, withService bool) (map[uint64][]model.OrderItem, error) {
	out := make(map[uint64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	query := `SELECT oi.id, oi.order_id, oi.service_id, oi.quantity, oi.price, oi.notes, oi.created_at, oi.updated_at`
	if withService {
		query += `, s.id, s.title, s.description, s.price, s.type, s.category, s.image_url, s.availability, s.metadata, s.created_at, s.updated_at
		FROM order_items oi JOIN services s ON s.id = oi.service_id`
	} else {
		query += ` FROM order_items oi`
	}
	query += ` WHERE oi.order_id IN (` + placeholders(len(orderIDs)) + `) ORDER BY oi.id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		dest := []any{&it.ID, &it.OrderID, &it.ServiceID, &it.Quantity, &it.Price, &it.Notes, &it.CreatedAt, &it.UpdatedAt}
		var s model.Service
		if withService {
			dest = append(dest, &s.ID, &s.Title, &s.Description, &s.Price, &s.Type, &s.Category,
				&s.ImageURL, &s.Availability, &s.Metadata, &s.CreatedAt, &s.UpdatedAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if withService {
			it.Service = &s
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
