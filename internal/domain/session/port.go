package session

import "context"

type Repo interface {
	Create(ctx context.Context, s *Session) error
	// FindValid returns the unexpired session for tokenHash joined with its username.
	FindValid(ctx context.Context, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, tokenHash string) error
}
