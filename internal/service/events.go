package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/queue"
)

// EventPublisher is the part of queue.Publisher the services need.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// publishAfterCommit delivers ev on a context detached from the request.
// A failed publish is logged and never fails the caller.
func publishAfterCommit(ctx context.Context, pub EventPublisher, log *zap.Logger, ev queue.Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("event not published",
			zap.String("event", string(ev.Type)),
			zap.Uint64("order_id", ev.OrderID),
			zap.Error(err))
	}
}
