// Package session keeps the staff login of the admin client across runs.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/client"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// API is the part of the HTTP client the manager drives.
type API interface {
	Login(ctx context.Context, username, password string) (dto.AuthResponse, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

// Session is the authenticated context handed to the rest of the client.
type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

type fileState struct {
	User      dto.UserResponse `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Manager owns the current session and its file.
type Manager struct {
	mu      sync.RWMutex
	path    string
	api     API
	logger  *zap.Logger
	now     func() time.Time
	current *Session
}

// NewManager creates a logged-out manager persisting to path.
func NewManager(path string, api API, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{path: path, api: api, logger: logger, now: time.Now}
}

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "helpdesk", "session.json"), nil
}

// Login authenticates. Wrong credentials return false with a nil error and
// leave any existing state untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (bool, error) {
	resp, err := m.api.Login(ctx, username, password)
	if client.IsStatus(err, http.StatusUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	session := &Session{User: resp.User.ToDomain(), Token: resp.Token, ExpiresAt: resp.ExpiresAt}
	if err := m.persist(session); err != nil {
		m.logger.Warn("session not saved; login lasts for this run only", zap.Error(err))
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
	m.api.SetToken(session.Token)
	return true, nil
}

// Restore loads a previously saved session. Unreadable, corrupt or expired
// files are removed and the manager stays logged out.
func (m *Manager) Restore() bool {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	if err != nil {
		m.logger.Warn("cannot read session file", zap.String("path", m.path), zap.Error(err))
		return false
	}

	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil {
		m.discard("corrupt session file", err)
		return false
	}
	if state.Token == "" || state.User.Username == "" || !state.User.Role.Valid() {
		m.discard("incomplete session file", nil)
		return false
	}
	if !state.ExpiresAt.IsZero() && !m.now().Before(state.ExpiresAt) {
		m.discard("expired session", nil)
		return false
	}

	session := &Session{User: state.User.ToDomain(), Token: state.Token, ExpiresAt: state.ExpiresAt}
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
	m.api.SetToken(session.Token)
	return true
}

// Logout clears the session everywhere. The server call is best effort and
// calling Logout while logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if had {
		if err := m.api.Logout(ctx); err != nil {
			m.logger.Warn("server logout failed", zap.Error(err))
		}
	}
	m.api.SetToken("")

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Current returns the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// IsAdmin reports whether the active user may edit and delete tickets.
func (m *Manager) IsAdmin() bool {
	s, ok := m.Current()
	return ok && s.User.Role == domain.RoleAdmin
}

func (m *Manager) persist(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(fileState{
		User:      dto.NewUserResponse(s.User),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(m.path, bytes.NewReader(raw)); err != nil {
		return err
	}
	return os.Chmod(m.path, 0o600)
}

func (m *Manager) discard(reason string, err error) {
	m.logger.Warn("discarding saved session", zap.String("reason", reason), zap.Error(err))
	if rmErr := os.Remove(m.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		m.logger.Warn("cannot remove session file", zap.Error(rmErr))
	}
}
