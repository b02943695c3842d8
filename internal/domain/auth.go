package domain

import "time"

// Session is an authenticated staff login tracked by the server.
type Session struct {
	ID        string
	User      User
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
