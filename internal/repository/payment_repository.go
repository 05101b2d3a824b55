package repository

import (
	"context"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

const paymentColumns = "id, order_id, amount, payment_method, transaction_id, status, last_four_digits, metadata, created_at, updated_at"

var paymentFilterColumns = map[string]bool{"order_id": true, "status": true, "payment_method": true}

// PaymentRepo reads and writes the payments table.
type PaymentRepo struct{ q DBTX }

func NewPaymentRepo(q DBTX) *PaymentRepo { return &PaymentRepo{q: q} }

func scanPayment(row rowScanner) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.PaymentMethod, &p.TransactionID,
		&p.Status, &p.LastFourDigits, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) FindAll(ctx context.Context, f Filter) ([]model.Payment, error) {
	where, args, err := whereClause(f, paymentFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments"+where+" ORDER BY created_at DESC, id DESC"+limitClause(f), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) FindByID(ctx context.Context, id uint64) (*model.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ? LIMIT 1", id))
	return p, translate(err)
}

func (r *PaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE transaction_id = ? LIMIT 1", transactionID))
	return p, translate(err)
}

// Create fails with ErrDuplicate when the transaction id is taken.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (order_id, amount, payment_method, transaction_id, status, last_four_digits, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.OrderID, p.Amount, p.PaymentMethod, p.TransactionID, p.Status, p.LastFourDigits, p.Metadata)
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
	*p = *stored
	return nil
}

func (r *PaymentRepo) Update(ctx context.Context, id uint64, p model.PaymentPatch) (*model.Payment, error) {
	var set setList
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.Metadata != nil {
		set.add("metadata", *p.Metadata)
	}
	if !set.empty() {
		if _, err := r.q.ExecContext(ctx, "UPDATE payments SET "+set.sql()+" WHERE id = ?", append(set.args, id)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *PaymentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
