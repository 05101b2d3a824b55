package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a passenger's purchase. TotalAmount always equals the sum of
// its items' Price*Quantity.
type Order struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"userId"`
	FlightID    string          `json:"flightId"`
	SeatNumber  string          `json:"seatNumber"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       *string         `json:"notes,omitempty"`
	Items       []OrderItem     `json:"items,omitempty"`
	Payments    []Payment       `json:"payments,omitempty"`
	User        *User           `json:"user,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderPatch lists the mutable order columns.
type OrderPatch struct {
	FlightID    *string          `json:"flightId,omitempty"`
	SeatNumber  *string          `json:"seatNumber,omitempty"`
	Status      *OrderStatus     `json:"status,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	TotalAmount *decimal.Decimal `json:"-"`
}

// Empty reports whether the patch changes nothing.
func (p OrderPatch) Empty() bool {
	return p.FlightID == nil && p.SeatNumber == nil && p.Status == nil && p.Notes == nil && p.TotalAmount == nil
}

// OrderItem is one line of an order. Price is the unit price captured when
// the order was placed and never follows later catalog changes.
type OrderItem struct {
	ID        uint64          `json:"id"`
	OrderID   uint64          `json:"orderId"`
	ServiceID uint64          `json:"serviceId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notes     *string         `json:"notes,omitempty"`
	Service   *Service        `json:"service,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Subtotal is Price*Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
