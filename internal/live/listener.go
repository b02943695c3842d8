package live

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

// TicketSource is the working set the listener keeps in sync.
type TicketSource interface {
	Reload(ctx context.Context) error
	Find(id string) (domain.Ticket, bool)
}

// Notifier alerts the operator about new tickets.
type Notifier interface {
	Sound() error
	Toast(ticket domain.Ticket)
}

// Listener consumes the server change feed and refetches on every change.
type Listener struct {
	url        string
	source     TicketSource
	notifier   Notifier
	logger     *zap.Logger
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
}

// ListenerOption customizes a Listener.
type ListenerOption func(*Listener)

// WithBackoff overrides the reconnect backoff bounds.
func WithBackoff(min, max time.Duration) ListenerOption {
	return func(l *Listener) {
		l.minBackoff = min
		l.maxBackoff = max
	}
}

// NewListener builds a listener for the websocket at feedURL.
func NewListener(feedURL string, source TicketSource, notifier Notifier, logger *zap.Logger, opts ...ListenerOption) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Listener{
		url:        feedURL,
		source:     source,
		notifier:   notifier,
		logger:     logger,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FeedURL derives the websocket address from the API base URL.
func FeedURL(apiBase, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported api scheme %q", u.Scheme)
	}
	u.Path += "/api/live"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run blocks until ctx is cancelled. Dropped connections are retried with
// exponential backoff. Every successful dial, the first included, is followed
// by a full reload so changes made while not subscribed are picked up.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff

	for {
		conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Warn("live feed unavailable", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, l.maxBackoff)
			continue
		}

		backoff = l.minBackoff
		l.reload(ctx)

		err = l.consume(ctx, conn)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("live feed disconnected", zap.Error(err))
	}
}

func (l *Listener) consume(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("server closed the feed")
			}
			return err
		}
		l.handle(ctx, msg)
	}
}

func (l *Listener) handle(ctx context.Context, msg Message) {
	l.reload(ctx)
	if msg.Type != events.EventTicketInserted || l.notifier == nil {
		return
	}
	if err := l.notifier.Sound(); err != nil {
		l.logger.Warn("notification sound failed", zap.Error(err))
	}
	ticket, ok := l.source.Find(msg.TicketID)
	if !ok {
		ticket = domain.Ticket{ID: msg.TicketID}
	}
	l.notifier.Toast(ticket)
}

func (l *Listener) reload(ctx context.Context) {
	if err := l.source.Reload(ctx); err != nil && ctx.Err() == nil {
		l.logger.Warn("reload after change failed", zap.Error(err))
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
