package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var admin = domain.User{ID: "u-1", Username: "admin", Role: domain.RoleAdmin, DisplayName: "Administrator"}
var viewer = domain.User{ID: "u-2", Username: "viewer", Role: domain.RoleViewer}

func newStore(t *testing.T) (SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func login(t *testing.T, tm *TokenManager, store SessionStore, user domain.User, id string) string {
	t.Helper()
	now := time.Now()
	token, expires, err := tm.GenerateToken(id, user, now)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	session := domain.Session{ID: id, User: user, Token: token, IssuedAt: now, ExpiresAt: expires}
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return token
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, expires, err := tm.GenerateToken("sid-1", admin, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatal("expected future expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SessionID != "sid-1" || claims.Subject != admin.ID || claims.Role != domain.RoleAdmin || claims.Name != "Administrator" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := NewTokenManager("other", time.Hour).ParseToken(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, _, err := tm.GenerateToken("sid-1", admin, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestRedisSessionStore(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	session := domain.Session{ID: "sid-1", User: admin, IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("session:sid-1"); ttl <= 0 {
		t.Fatalf("expected ttl on session key, got %v", ttl)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.User.Username != "admin" || got.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.User.PasswordHash != "" {
		t.Fatal("password hash must not be stored")
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func newTestApp(mw *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/any", mw.Handle, RequireRole(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Delete("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store, _ := newStore(t)
	app := newTestApp(NewAuthMiddleware(tm, store))

	adminToken := login(t, tm, store, admin, "sid-admin")
	viewerToken := login(t, tm, store, viewer, "sid-viewer")

	tests := []struct {
		name   string
		method string
		target string
		header string
		want   int
	}{
		{"missing token", http.MethodGet, "/any", "", http.StatusUnauthorized},
		{"malformed header", http.MethodGet, "/any", "Token abc", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/any", "Bearer abc", http.StatusUnauthorized},
		{"viewer lists", http.MethodGet, "/any", "Bearer " + viewerToken, http.StatusOK},
		{"query token", http.MethodGet, "/any?token=" + viewerToken, "", http.StatusOK},
		{"viewer cannot delete", http.MethodDelete, "/admin", "Bearer " + viewerToken, http.StatusForbidden},
		{"admin deletes", http.MethodDelete, "/admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRevokedSessionRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store, _ := newStore(t)
	app := newTestApp(NewAuthMiddleware(tm, store))
	token := login(t, tm, store, admin, "sid-admin")

	if err := store.Delete(context.Background(), "sid-admin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestPasswordMatches(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !PasswordMatches(hash, "s3cret") {
		t.Fatal("expected match")
	}
	if PasswordMatches(hash, "S3cret") {
		t.Fatal("password comparison must be case-sensitive")
	}
	if PasswordMatches("not-a-hash", "s3cret") {
		t.Fatal("malformed hash must not match")
	}
}
