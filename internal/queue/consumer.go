package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// GalleyConsumer reads order events and appends one line per event to the
// galley log the cabin crew follows.
type GalleyConsumer struct {
	URL     string
	Queue   string
	LogPath string
	Log     *zap.Logger
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff whenever the broker goes away.
func (g *GalleyConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(g.URL)
		if err != nil {
			g.Log.Warn("galley consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = g.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.Log.Warn("galley consumer: loop ended, reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (g *GalleyConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		g.Log.Warn("galley consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(g.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, g.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	g.Log.Info("galley consumer: listening", zap.String("queue", g.Queue), zap.String("log", g.LogPath))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := g.Handle(d.Body); err != nil {
				g.Log.Error("galley consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message and appends its galley line to LogPath.
func (g *GalleyConsumer) Handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(g.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(g.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(GalleyLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// GalleyLine renders an event as a single newline-terminated log line.
func GalleyLine(ev Event) string {
	items := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		name := it.Title
		if name == "" {
			name = fmt.Sprintf("service#%d", it.ServiceID)
		}
		items = append(items, fmt.Sprintf("%dx %s", it.Quantity, name))
	}
	line := fmt.Sprintf("[%s] %s | order_id=%d | flight=%s | seat=%s | status=%s | total=%s",
		ev.OccurredAt, ev.Type, ev.OrderID, ev.FlightID, ev.SeatNumber, ev.Status, ev.TotalAmount)
	if ev.TransactionID != "" {
		line += " | transaction=" + ev.TransactionID
	}
	if len(items) > 0 {
		line += " | items=[" + strings.Join(items, ", ") + "]"
	}
	return line + "\n"
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
