package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()

	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
}

func TestNilStoresReportUnavailable(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil redis")
	}
	if err := (&Postgres{}).Ping(context.Background()); err != ErrNoDatabase {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
}
