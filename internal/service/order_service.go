package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/queue"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ServiceID uint64  `json:"serviceId"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
}

// CreateOrderInput is the payload for CreateWithItems. A zero UserID is
// filled in by the caller from the authenticated user.
type CreateOrderInput struct {
	UserID     uint64           `json:"userId"`
	FlightID   string           `json:"flightId"`
	SeatNumber string           `json:"seatNumber"`
	Notes      *string          `json:"notes,omitempty"`
	Items      []OrderItemInput `json:"items"`
}

func (in CreateOrderInput) validate() error {
	if strings.TrimSpace(in.FlightID) == "" || strings.TrimSpace(in.SeatNumber) == "" || len(in.Items) == 0 {
		return invalid("Flight ID, seat number, and items are required")
	}
	if in.UserID == 0 {
		return invalid("User ID is required")
	}
	for i, it := range in.Items {
		if it.ServiceID == 0 {
			return invalid("items[%d]: serviceId is required", i)
		}
		if it.Quantity < 1 {
			return invalid("items[%d]: quantity must be at least 1", i)
		}
	}
	return nil
}

// OrderService places orders and moves them through their lifecycle.
type OrderService struct {
	Base[model.Order, model.OrderPatch]
	store  repository.Store
	events EventPublisher
	log    *zap.Logger
}

func NewOrderService(store repository.Store, events EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		Base:   NewBase[model.Order, model.OrderPatch]("Order", store.Orders()),
		store:  store,
		events: events,
		log:    log,
	}
}

// CreateWithItems stores an order and its items atomically. Each item
// captures the service's current price; the order total is the sum of
// price*quantity. If any service is missing nothing is written.
func (s *OrderService) CreateWithItems(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var orderID uint64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		o := &model.Order{
			UserID:      in.UserID,
			FlightID:    strings.TrimSpace(in.FlightID),
			SeatNumber:  strings.TrimSpace(in.SeatNumber),
			Status:      model.OrderPending,
			TotalAmount: decimal.Zero,
			Notes:       in.Notes,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		total := decimal.Zero
		for _, req := range in.Items {
			sv, err := tx.Services().FindByID(ctx, req.ServiceID)
			if err != nil {
				return notFound(err, "Service", req.ServiceID)
			}
			item := &model.OrderItem{
				OrderID:   o.ID,
				ServiceID: sv.ID,
				Quantity:  req.Quantity,
				Price:     sv.Price,
				Notes:     req.Notes,
			}
			if err := tx.Orders().CreateItem(ctx, item); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			total = total.Add(item.Subtotal())
		}

		if _, err := tx.Orders().Update(ctx, o.ID, model.OrderPatch{TotalAmount: &total}); err != nil {
			return fmt.Errorf("set order total: %w", err)
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Details(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("user_id", order.UserID),
		zap.String("flight_id", order.FlightID),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	publishAfterCommit(ctx, s.events, s.log, queue.NewOrderEvent(queue.OrderCreated, order))
	return order, nil
}

// Details loads an order with its items (and their services), payments
// and owner.
func (s *OrderService) Details(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list := []model.Order{*o}
	if err := s.attachItems(ctx, list, true); err != nil {
		return nil, err
	}
	if err := s.attachUsers(ctx, list); err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().FindAll(ctx, repository.Eq("order_id", id))
	if err != nil {
		return nil, err
	}
	list[0].Payments = payments
	return &list[0], nil
}

// FindByUser returns a user's orders with items and services.
func (s *OrderService) FindByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	orders, err := s.store.Orders().FindAll(ctx, repository.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	return orders, s.attachItems(ctx, orders, true)
}

// FindByFlight returns a flight's orders with items and passengers.
func (s *OrderService) FindByFlight(ctx context.Context, flightID string) ([]model.Order, error) {
	return s.findWithUsers(ctx, repository.Eq("flight_id", flightID))
}

// List pages through every order, optionally narrowed to one status.
func (s *OrderService) List(ctx context.Context, status model.OrderStatus, page, limit int) ([]model.Order, error) {
	f := repository.Filter{}
	if status != "" {
		if !status.Valid() {
			return nil, invalid("Valid order status is required")
		}
		f = repository.Eq("status", status)
	}
	orders, err := s.store.Orders().FindAll(ctx, f.Page(page, limit))
	if err != nil {
		return nil, err
	}
	return orders, s.attachItems(ctx, orders, false)
}

func (s *OrderService) findWithUsers(ctx context.Context, f repository.Filter) ([]model.Order, error) {
	orders, err := s.store.Orders().FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, orders, false); err != nil {
		return nil, err
	}
	return orders, s.attachUsers(ctx, orders)
}

// UpdateStatus moves an order to status and returns the refreshed order.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, invalid("Valid order status is required")
	}
	return s.Modify(ctx, id, model.OrderPatch{Status: &status})
}

// Modify applies a client patch. The total is never client-controlled.
func (s *OrderService) Modify(ctx context.Context, id uint64, p model.OrderPatch) (*model.Order, error) {
	p.TotalAmount = nil
	if p.Status != nil && !p.Status.Valid() {
		return nil, invalid("Valid order status is required")
	}
	if p.FlightID != nil && strings.TrimSpace(*p.FlightID) == "" {
		return nil, invalid("Flight ID must not be empty")
	}
	if p.SeatNumber != nil && strings.TrimSpace(*p.SeatNumber) == "" {
		return nil, invalid("Seat number must not be empty")
	}
	if _, err := s.Update(ctx, id, p); err != nil {
		return nil, err
	}
	order, err := s.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != nil {
		publishAfterCommit(ctx, s.events, s.log, queue.NewOrderEvent(queue.OrderStatusChanged, order))
	}
	return order, nil
}

// CanAccess reports whether actor may read or change o.
func CanAccess(actor *model.User, o *model.Order) bool {
	return actor != nil && (actor.IsStaff || o.UserID == actor.ID)
}

func (s *OrderService) attachItems(ctx context.Context, orders []model.Order, withService bool) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := s.store.Orders().ItemsByOrderIDs(ctx, ids, withService)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return nil
}

func (s *OrderService) attachUsers(ctx context.Context, orders []model.Order) error {
	users := map[uint64]*model.User{}
	for i := range orders {
		uid := orders[i].UserID
		if _, seen := users[uid]; !seen {
			u, err := s.store.Users().FindByID(ctx, uid)
			if err != nil {
				return notFound(err, "User", uid)
			}
			users[uid] = u
		}
		orders[i].User = users[uid]
	}
	return nil
}
