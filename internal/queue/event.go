// Package queue defines the order events exchanged over RabbitMQ, the
// publisher the API uses and the galley consumer run by the worker.
package queue

import (
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	PaymentProcessed   EventType = "payment.processed"
)

// EventItem is a single order line as the crew sees it.
type EventItem struct {
	ServiceID uint64 `json:"service_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// Event carries enough of an order for the galley to act on it without
// querying the primary database.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	OrderID       uint64      `json:"order_id"`
	UserID        uint64      `json:"user_id"`
	FlightID      string      `json:"flight_id"`
	SeatNumber    string      `json:"seat_number"`
	Status        string      `json:"status"`
	TotalAmount   string      `json:"total_amount"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Items         []EventItem `json:"items,omitempty"`
	OccurredAt    string      `json:"occurred_at"`
}

// NewOrderEvent builds an event from an order. Items are included when the
// order carries them.
func NewOrderEvent(t EventType, o *model.Order) Event {
	ev := Event{
		Type:        t,
		OrderID:     o.ID,
		UserID:      o.UserID,
		FlightID:    o.FlightID,
		SeatNumber:  o.SeatNumber,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		ei := EventItem{ServiceID: it.ServiceID, Quantity: it.Quantity, Price: it.Price.StringFixed(2)}
		if it.Service != nil {
			ei.Title = it.Service.Title
		}
		ev.Items = append(ev.Items, ei)
	}
	return ev
}
