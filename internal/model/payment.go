package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// OrderTransition returns the order status implied by a payment reaching
// s, or false when the order is left alone.
func (s PaymentStatus) OrderTransition() (OrderStatus, bool) {
	switch s {
	case PaymentCompleted:
		return OrderProcessing, true
	case PaymentFailed:
		return OrderCancelled, true
	}
	return "", false
}

type PaymentMethod string

const (
	MethodCreditCard      PaymentMethod = "credit_card"
	MethodDebitCard       PaymentMethod = "debit_card"
	MethodLoyaltyPoints   PaymentMethod = "loyalty_points"
	MethodInFlightAccount PaymentMethod = "in_flight_account"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodLoyaltyPoints, MethodInFlightAccount:
		return true
	}
	return false
}

// Payment records a charge against an order. TransactionID is unique
// across all payments.
type Payment struct {
	ID             uint64          `json:"id"`
	OrderID        uint64          `json:"orderId"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	TransactionID  string          `json:"transactionId"`
	Status         PaymentStatus   `json:"status"`
	LastFourDigits *string         `json:"lastFourDigits,omitempty"`
	Metadata       JSONMap         `json:"metadata,omitempty"`
	Order          *Order          `json:"order,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PaymentPatch lists the mutable payment columns.
type PaymentPatch struct {
	Status   *PaymentStatus `json:"status,omitempty"`
	Metadata *JSONMap       `json:"metadata,omitempty"`
}
