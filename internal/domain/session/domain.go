package session

import "time"

type Session struct {
	ID        int64
	UserID    int64
	Username  string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the authenticated principal carried through a request.
type Identity struct {
	UserID   int64
	Username string
}
