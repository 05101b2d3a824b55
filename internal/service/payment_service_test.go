package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestPaymentStatusDrivesOrderStatus(t *testing.T) {
	cases := []struct {
		status model.PaymentStatus
		want   model.OrderStatus
	}{
		{"", model.OrderProcessing},
		{model.PaymentCompleted, model.OrderProcessing},
		{model.PaymentFailed, model.OrderCancelled},
		{model.PaymentPending, model.OrderPending},
		{model.PaymentRefunded, model.OrderPending},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			u := f.passenger(t, "ada@example.com")
			sv := f.service(t, "Premium Coffee", "4.99")
			o := f.order(t, u.ID, OrderItemInput{ServiceID: sv.ID, Quantity: 1})

			p, err := f.payments.Process(ctx, u, ProcessPaymentInput{
				OrderID: o.ID, TransactionID: "TR123456", Amount: amount("4.99"),
				PaymentMethod: model.MethodCreditCard, Status: tc.status,
			})
			require.NoError(t, err)
			if tc.status == "" {
				assert.Equal(t, model.PaymentCompleted, p.Status)
			}
			require.NotNil(t, p.Order)
			assert.Equal(t, tc.want, p.Order.Status)

			stored, err := f.orders.FindByID(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Status)
		})
	}
}

func TestPaymentUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.passenger(t, "ada@example.com")
	sv := f.service(t, "Premium Coffee", "4.99")
	o := f.order(t, u.ID, OrderItemInput{ServiceID: sv.ID, Quantity: 1})

	p, err := f.payments.Process(ctx, nil, ProcessPaymentInput{
		OrderID: o.ID, TransactionID: "TR654321", Amount: amount("4.99"),
		PaymentMethod: model.MethodInFlightAccount, Status: model.PaymentPending,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, p.Order.Status)

	meta := model.JSONMap{"reason": "card declined"}
	p, err = f.payments.UpdateStatus(ctx, p.ID, model.PaymentFailed, &meta)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.Status)
	assert.Equal(t, "card declined", p.Metadata["reason"])
	assert.Equal(t, model.OrderCancelled, p.Order.Status)

	p, err = f.payments.UpdateStatus(ctx, p.ID, model.PaymentCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, p.Order.Status)
	assert.Equal(t, "card declined", p.Metadata["reason"], "metadata kept when not replaced")

	_, err = f.payments.UpdateStatus(ctx, 999, model.PaymentCompleted, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var kinds []queue.EventType
	for _, ev := range f.events.Events() {
		kinds = append(kinds, ev.Type)
	}
	assert.Equal(t, []queue.EventType{queue.OrderCreated, queue.PaymentProcessed, queue.PaymentProcessed, queue.PaymentProcessed}, kinds)
}

func TestDuplicateTransactionIDIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.passenger(t, "ada@example.com")
	sv := f.service(t, "Premium Coffee", "4.99")
	o := f.order(t, u.ID, OrderItemInput{ServiceID: sv.ID, Quantity: 1})

	in := ProcessPaymentInput{OrderID: o.ID, TransactionID: "TR111111", Amount: amount("4.99"), PaymentMethod: model.MethodDebitCard, Status: model.PaymentPending}
	_, err := f.payments.Process(ctx, u, in)
	require.NoError(t, err)

	in.Status = model.PaymentFailed
	_, err = f.payments.Process(ctx, u, in)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, stored.Status, "rolled back with the failed insert")
}

func TestProcessPaymentRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.passenger(t, "ada@example.com")
	other := f.passenger(t, "bob@example.com")
	sv := f.service(t, "Premium Coffee", "4.99")
	o := f.order(t, u.ID, OrderItemInput{ServiceID: sv.ID, Quantity: 1})

	base := ProcessPaymentInput{OrderID: o.ID, TransactionID: "TR1", Amount: amount("4.99"), PaymentMethod: model.MethodCreditCard}

	missing := base
	missing.TransactionID = ""
	zero := base
	zero.Amount = amount("0")
	method := base
	method.PaymentMethod = "cash"
	digits := base
	bad := "12a4"
	digits.LastFourDigits = &bad

	for name, in := range map[string]ProcessPaymentInput{"missing": missing, "zero": zero, "method": method, "digits": digits} {
		_, err := f.payments.Process(ctx, u, in)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, name)
	}

	noOrder := base
	noOrder.OrderID = 999
	_, err := f.payments.Process(ctx, u, noOrder)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.payments.Process(ctx, other, base)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestFindByTransactionID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.passenger(t, "ada@example.com")
	sv := f.service(t, "Premium Coffee", "4.99")
	o := f.order(t, u.ID, OrderItemInput{ServiceID: sv.ID, Quantity: 1})
	_, err := f.payments.Process(ctx, u, ProcessPaymentInput{OrderID: o.ID, TransactionID: "TR42", Amount: amount("4.99"), PaymentMethod: model.MethodLoyaltyPoints})
	require.NoError(t, err)

	p, err := f.payments.FindByTransactionID(ctx, "TR42")
	require.NoError(t, err)
	require.NotNil(t, p.Order)
	assert.Equal(t, o.ID, p.Order.ID)

	_, err = f.payments.FindByTransactionID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := f.payments.FindByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
