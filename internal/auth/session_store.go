package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore tracks live logins so a token can be revoked before it expires.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore keeps sessions under "session:<id>" with a TTL matching
// the token expiry.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client, prefix: "session:"}
}

type storedSession struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name,omitempty"`
	IssuedAt    time.Time   `json:"issued_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

func (s *redisSessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	payload, err := json.Marshal(storedSession{
		UserID:      session.User.ID,
		Username:    session.User.Username,
		Role:        session.User.Role,
		DisplayName: session.User.DisplayName,
		IssuedAt:    session.IssuedAt,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+session.ID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &domain.Session{
		ID: id,
		User: domain.User{
			ID:          stored.UserID,
			Username:    stored.Username,
			Role:        stored.Role,
			DisplayName: stored.DisplayName,
		},
		IssuedAt:  stored.IssuedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Delete is idempotent.
func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
