package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// ChangeListener turns Postgres notifications on the tickets table into
// dispatcher events.
type ChangeListener struct {
	pool       *pgxpool.Pool
	channel    string
	dispatcher events.Dispatcher
	delay      time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// ChangeListenerConfig bundles the listener collaborators.
type ChangeListenerConfig struct {
	Pool           *pgxpool.Pool
	Dispatcher     events.Dispatcher
	ReconnectDelay time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewChangeListener builds the listener.
func NewChangeListener(cfg ChangeListenerConfig) *ChangeListener {
	return &ChangeListener{
		pool:       cfg.Pool,
		channel:    persistence.TicketChangeChannel,
		dispatcher: cfg.Dispatcher,
		delay:      cfg.ReconnectDelay,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Run listens until ctx is cancelled, reconnecting after a fixed delay
// whenever the connection drops.
func (l *ChangeListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("change feed interrupted; reconnecting",
			zap.Error(err), zap.Duration("delay", l.delay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.delay):
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	// a LISTENing connection must not go back to the pool
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("listening for ticket changes", zap.String("channel", l.channel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		event, err := ParseNotification(notification.Payload, time.Now())
		if err != nil {
			l.logger.Warn("ignoring malformed change notification",
				zap.String("payload", notification.Payload), zap.Error(err))
			continue
		}
		l.metrics.RecordLiveEvent(string(event.Type))
		_ = l.dispatcher.Publish(ctx, event)
	}
}

type changePayload struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ParseNotification decodes the trigger payload {"type":"INSERT","id":"..."}.
func ParseNotification(payload string, now time.Time) (events.Event, error) {
	var p changePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return events.Event{}, err
	}
	eventType, err := events.ParseEventType(p.Type)
	if err != nil {
		return events.Event{}, err
	}
	if p.ID == "" {
		return events.Event{}, fmt.Errorf("notification without ticket id")
	}
	return events.NewEvent(eventType, p.ID, now), nil
}
