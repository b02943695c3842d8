package live

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

type fakeSource struct {
	reloads atomic.Int32
	err     error
}

func (f *fakeSource) Reload(context.Context) error {
	f.reloads.Add(1)
	return f.err
}

func (f *fakeSource) Find(id string) (domain.Ticket, bool) {
	return domain.Ticket{ID: id, Title: "Printer offline"}, true
}

type fakeNotifier struct {
	mu       sync.Mutex
	sounds   int
	toasts   []domain.Ticket
	soundErr error
}

func (f *fakeNotifier) Sound() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds++
	return f.soundErr
}

func (f *fakeNotifier) Toast(t domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, t)
}

func (f *fakeNotifier) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sounds, len(f.toasts)
}

var upgrader = websocket.Upgrader{}

// feedServer sends the given frames on every connection and then closes it.
func feedServer(t *testing.T, connections *atomic.Int32, frames ...Message) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := connections.Add(1)
		if n > 1 {
			// later connections stay open until the client leaves
			_, _, _ = conn.ReadMessage()
			return
		}
		for _, f := range frames {
			_ = conn.WriteJSON(f)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListenerReloadsAndNotifies(t *testing.T) {
	var connections atomic.Int32
	srv := feedServer(t, &connections,
		Message{Type: events.EventTicketInserted, TicketID: "t1"},
		Message{Type: events.EventTicketUpdated, TicketID: "t1"},
		Message{Type: events.EventTicketDeleted, TicketID: "t1"},
	)
	source := &fakeSource{}
	notifier := &fakeNotifier{}
	l := NewListener(wsURL(srv), source, notifier, nil, WithBackoff(time.Millisecond, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// one reload per dial plus one per event
	waitFor(t, func() bool { return connections.Load() >= 2 && source.reloads.Load() >= 5 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	sounds, toasts := notifier.counts()
	if sounds != 1 || toasts != 1 {
		t.Fatalf("sounds=%d toasts=%d, want 1/1", sounds, toasts)
	}
	if notifier.toasts[0].Title != "Printer offline" {
		t.Fatalf("toast ticket %+v", notifier.toasts[0])
	}
}

func TestListenerReloadsOnFirstConnect(t *testing.T) {
	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		connections.Add(1)
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	source := &fakeSource{}
	l := NewListener(wsURL(srv), source, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// no events are sent; the reload must come from subscribing itself
	waitFor(t, func() bool { return connections.Load() == 1 && source.reloads.Load() == 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestListenerSoundFailureIsNotFatal(t *testing.T) {
	var connections atomic.Int32
	srv := feedServer(t, &connections, Message{Type: events.EventTicketInserted, TicketID: "t2"})
	source := &fakeSource{err: errors.New("api down")}
	notifier := &fakeNotifier{soundErr: errors.New("no audio device")}
	l := NewListener(wsURL(srv), source, notifier, nil, WithBackoff(time.Millisecond, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	waitFor(t, func() bool { _, toasts := notifier.counts(); return toasts == 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestListenerStopsWhileServerDown(t *testing.T) {
	l := NewListener("ws://127.0.0.1:1/api/live", &fakeSource{}, nil, nil, WithBackoff(time.Millisecond, 2*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNextBackoffCapped(t *testing.T) {
	d := time.Second
	for i := 0; i < 10; i++ {
		d = nextBackoff(d, 30*time.Second)
	}
	if d != 30*time.Second {
		t.Fatalf("backoff = %v", d)
	}
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/live?token=abc", false},
		{"https://helpdesk.example/", "wss://helpdesk.example/api/live?token=abc", false},
		{"ftp://nope", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := FeedURL(tt.base, "abc")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)
	if err := n.Sound(); err != nil {
		t.Fatalf("Sound: %v", err)
	}
	n.Toast(domain.Ticket{ID: "ticket-1", Title: "Scanner broken", CreatedByName: "Ali", CreatedBySurname: "Veli"})
	out := buf.String()
	if !strings.HasPrefix(out, "\a") {
		t.Fatal("expected bell")
	}
	for _, want := range []string{"New ticket received", "Scanner broken", "ticket-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("toast missing %q: %s", want, out)
		}
	}
}
