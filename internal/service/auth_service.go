package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// AuthService coordinates staff login and logout.
type AuthService struct {
	users    repository.UserRepository
	sessions auth.SessionStore
	tokenMgr *auth.TokenManager
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore auth.SessionStore
	TokenManager *auth.TokenManager
	Clock        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:    deps.UserRepo,
		sessions: deps.SessionStore,
		tokenMgr: deps.TokenManager,
		now:      deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Login checks the credentials. Unknown users and wrong passwords both yield
// false with a nil error; only store failures return an error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, false, nil
	}

	now := s.now()
	sessionID := uuid.NewString()
	user.PasswordHash = ""
	token, expiresAt, err := s.tokenMgr.GenerateToken(sessionID, *user, now)
	if err != nil {
		return nil, false, fmt.Errorf("sign token: %w", err)
	}
	session := domain.Session{
		ID:        sessionID,
		User:      *user,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, false, fmt.Errorf("store session: %w", err)
	}
	return &session, true, nil
}

// Logout revokes the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}
