package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

// Entity types and operations accepted by Sync.
const (
	EntityOrders         = "orders"
	EntityUserSelections = "user_selections"

	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// SyncItem is one change queued on the device while offline.
type SyncItem struct {
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Operation  string          `json:"operation"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type SyncRequest struct {
	UserID uint64     `json:"userId"`
	Items  []SyncItem `json:"items"`
}

// SyncResult reports the outcome of one item. ServerID is the id the
// server assigned to an inserted order.
type SyncResult struct {
	Success    bool   `json:"success"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	ServerID   uint64 `json:"serverId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type SyncResponse struct {
	SyncResults []SyncResult    `json:"syncResults"`
	Timestamp   time.Time       `json:"timestamp"`
	Services    []model.Service `json:"services"`
}

// ServicesSnapshot is the catalog delta for a device.
type ServicesSnapshot struct {
	Services  []model.Service `json:"services"`
	Timestamp time.Time       `json:"timestamp"`
}

// SyncService replays offline changes. Items are applied one by one and a
// failing item never affects the others.
type SyncService struct {
	orders  *OrderService
	catalog *CatalogService
	log     *zap.Logger
	now     func() time.Time
}

func NewSyncService(orders *OrderService, catalog *CatalogService, log *zap.Logger) *SyncService {
	return &SyncService{orders: orders, catalog: catalog, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Sync applies req on behalf of actor. Non-staff actors may only sync for
// themselves.
func (s *SyncService) Sync(ctx context.Context, actor *model.User, req SyncRequest) (*SyncResponse, error) {
	if req.UserID == 0 || req.Items == nil {
		return nil, invalid("User ID and sync items array are required")
	}
	if !actor.IsStaff && req.UserID != actor.ID {
		return nil, repository.ErrForbidden
	}

	results := make([]SyncResult, 0, len(req.Items))
	for _, item := range req.Items {
		res := SyncResult{EntityType: item.EntityType, EntityID: item.EntityID}
		var err error
		switch item.EntityType {
		case EntityOrders:
			res.ServerID, res.Message, err = s.syncOrder(ctx, actor, req.UserID, item)
		case EntityUserSelections:
			res.Message = "User selections acknowledged"
		default:
			err = invalid("Unknown entity type: %s", item.EntityType)
		}
		if err != nil {
			res.Message = syncFailure(err)
			s.log.Debug("sync item failed",
				zap.String("entity_type", item.EntityType),
				zap.String("entity_id", item.EntityID),
				zap.Error(err))
		} else {
			res.Success = true
		}
		results = append(results, res)
	}

	services, err := s.catalog.FindByAvailability(ctx, true)
	if err != nil {
		return nil, err
	}
	return &SyncResponse{SyncResults: results, Timestamp: s.now(), Services: services}, nil
}

// UpdatedServices returns the catalog changed after lastSync, or all of it
// when lastSync is nil.
func (s *SyncService) UpdatedServices(ctx context.Context, lastSync *time.Time) (*ServicesSnapshot, error) {
	services, err := s.catalog.UpdatedSince(ctx, lastSync)
	if err != nil {
		return nil, err
	}
	return &ServicesSnapshot{Services: services, Timestamp: s.now()}, nil
}

type orderChanges struct {
	FlightID   *string            `json:"flightId"`
	SeatNumber *string            `json:"seatNumber"`
	Status     *model.OrderStatus `json:"status"`
	Notes      *string            `json:"notes"`
}

func (s *SyncService) syncOrder(ctx context.Context, actor *model.User, userID uint64, item SyncItem) (uint64, string, error) {
	switch item.Operation {
	case OpInsert:
		var in CreateOrderInput
		if err := decodeData(item.Data, &in); err != nil {
			return 0, "", err
		}
		if in.UserID == 0 {
			in.UserID = userID
		}
		if !actor.IsStaff && in.UserID != actor.ID {
			return 0, "", repository.ErrForbidden
		}
		o, err := s.orders.CreateWithItems(ctx, in)
		if err != nil {
			return 0, "", err
		}
		return o.ID, "Order created", nil

	case OpUpdate, OpDelete:
		id, err := strconv.ParseUint(item.EntityID, 10, 64)
		if err != nil || id == 0 {
			return 0, "", invalid("Invalid order ID format")
		}
		o, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return 0, "", err
		}
		if !CanAccess(actor, o) {
			return 0, "", repository.ErrForbidden
		}
		if item.Operation == OpDelete {
			if _, err := s.orders.UpdateStatus(ctx, id, model.OrderCancelled); err != nil {
				return 0, "", err
			}
			return id, "Order cancelled", nil
		}
		var ch orderChanges
		if err := decodeData(item.Data, &ch); err != nil {
			return 0, "", err
		}
		patch := model.OrderPatch{FlightID: ch.FlightID, SeatNumber: ch.SeatNumber, Status: ch.Status, Notes: ch.Notes}
		if patch.Empty() {
			return 0, "", invalid("No order changes supplied")
		}
		if _, err := s.orders.Modify(ctx, id, patch); err != nil {
			return 0, "", err
		}
		return id, "Order updated", nil
	}
	return 0, "", invalid("Unknown operation: %s", item.Operation)
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return invalid("Missing data")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalid("Malformed data: %v", err)
	}
	return nil
}

// syncFailure turns an item error into the message reported to the
// device. Unexpected errors are not echoed verbatim.
func syncFailure(err error) string {
	var ve *ValidationError
	var nf *NotFoundError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &nf):
		return nf.Error()
	case errors.Is(err, repository.ErrForbidden):
		return "forbidden"
	case errors.Is(err, repository.ErrInvalidReference):
		return "Referenced user does not exist"
	}
	return "Error processing sync item"
}
