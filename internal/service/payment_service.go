package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

// ProcessPaymentInput is the payload for recording a payment. Status
// defaults to completed.
type ProcessPaymentInput struct {
	OrderID        uint64              `json:"orderId"`
	TransactionID  string              `json:"transactionId"`
	Amount         decimal.NullDecimal `json:"amount"`
	PaymentMethod  model.PaymentMethod `json:"paymentMethod"`
	Status         model.PaymentStatus `json:"status,omitempty"`
	LastFourDigits *string             `json:"lastFourDigits,omitempty"`
	Metadata       model.JSONMap       `json:"metadata,omitempty"`
}

func (in *ProcessPaymentInput) normalize() error {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if in.OrderID == 0 || in.TransactionID == "" || !in.Amount.Valid || in.PaymentMethod == "" {
		return invalid("Order ID, transaction ID, amount, and payment method are required")
	}
	if !in.Amount.Decimal.IsPositive() {
		return invalid("Amount must be greater than zero")
	}
	if !in.PaymentMethod.Valid() {
		return invalid("Invalid payment method: %s", in.PaymentMethod)
	}
	if in.Status == "" {
		in.Status = model.PaymentCompleted
	}
	if !in.Status.Valid() {
		return invalid("Invalid payment status: %s", in.Status)
	}
	if in.LastFourDigits != nil && !isDigits(*in.LastFourDigits, 4, 4) {
		return invalid("lastFourDigits must be exactly 4 digits")
	}
	return nil
}

// PaymentService records payments and keeps order status in step with
// them: a completed payment moves its order to processing, a failed one
// cancels it.
type PaymentService struct {
	Base[model.Payment, model.PaymentPatch]
	store  repository.Store
	events EventPublisher
	log    *zap.Logger
}

func NewPaymentService(store repository.Store, events EventPublisher, log *zap.Logger) *PaymentService {
	return &PaymentService{
		Base:   NewBase[model.Payment, model.PaymentPatch]("Payment", store.Payments()),
		store:  store,
		events: events,
		log:    log,
	}
}

// Process records a payment for an order. A non-nil, non-staff actor may
// only pay for their own orders.
func (s *PaymentService) Process(ctx context.Context, actor *model.User, in ProcessPaymentInput) (*model.Payment, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var (
		payment *model.Payment
		order   *model.Order
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, in.OrderID)
		if err != nil {
			return notFound(err, "Order", in.OrderID)
		}
		if actor != nil && !CanAccess(actor, o) {
			return repository.ErrForbidden
		}
		p := &model.Payment{
			OrderID:        o.ID,
			Amount:         in.Amount.Decimal,
			PaymentMethod:  in.PaymentMethod,
			TransactionID:  in.TransactionID,
			Status:         in.Status,
			LastFourDigits: in.LastFourDigits,
			Metadata:       in.Metadata,
		}
		if err := tx.Payments().Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateTransaction
			}
			return fmt.Errorf("create payment: %w", err)
		}
		if order, err = applyTransition(ctx, tx, o, p.Status); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.Uint64("payment_id", payment.ID),
		zap.Uint64("order_id", payment.OrderID),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("status", string(payment.Status)))
	s.publish(ctx, payment, order)
	payment.Order = order
	return payment, nil
}

// UpdateStatus changes a payment's status, optionally replacing its
// metadata, and applies the same order transition as Process.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus, metadata *model.JSONMap) (*model.Payment, error) {
	if !status.Valid() {
		return nil, invalid("Valid payment status is required")
	}
	var (
		payment *model.Payment
		order   *model.Order
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Payments().Update(ctx, id, model.PaymentPatch{Status: &status, Metadata: metadata})
		if err != nil {
			return notFound(err, "Payment", id)
		}
		o, err := tx.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return notFound(err, "Order", p.OrderID)
		}
		if order, err = applyTransition(ctx, tx, o, status); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, payment, order)
	payment.Order = order
	return payment, nil
}

// applyTransition moves the order as implied by a payment status and
// returns the order as it now stands.
func applyTransition(ctx context.Context, tx repository.Store, o *model.Order, status model.PaymentStatus) (*model.Order, error) {
	next, ok := status.OrderTransition()
	if !ok || o.Status == next {
		return o, nil
	}
	updated, err := tx.Orders().Update(ctx, o.ID, model.OrderPatch{Status: &next})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}

func (s *PaymentService) publish(ctx context.Context, p *model.Payment, o *model.Order) {
	ev := queue.NewOrderEvent(queue.PaymentProcessed, o)
	ev.TransactionID = p.TransactionID
	publishAfterCommit(ctx, s.events, s.log, ev)
}

// FindByTransactionID returns the payment with its order.
func (s *PaymentService) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	p, err := s.store.Payments().FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Payment"}
		}
		return nil, err
	}
	o, err := s.store.Orders().FindByID(ctx, p.OrderID)
	if err != nil {
		return nil, notFound(err, "Order", p.OrderID)
	}
	p.Order = o
	return p, nil
}

func (s *PaymentService) FindByOrder(ctx context.Context, orderID uint64) ([]model.Payment, error) {
	return s.store.Payments().FindAll(ctx, repository.Eq("order_id", orderID))
}

// List pages through payments, optionally narrowed to one status.
func (s *PaymentService) List(ctx context.Context, status model.PaymentStatus, page, limit int) ([]model.Payment, error) {
	f := repository.Filter{}
	if status != "" {
		if !status.Valid() {
			return nil, invalid("Valid payment status is required")
		}
		f = repository.Eq("status", status)
	}
	return s.store.Payments().FindAll(ctx, f.Page(page, limit))
}

func isDigits(s string, lo, hi int) bool {
	if len(s) < lo || len(s) > hi {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
