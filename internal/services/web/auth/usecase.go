package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	token "github.com/NordCoder/homelab/internal/auth"
	"github.com/NordCoder/homelab/internal/domain"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/domain/user"
)

var (
	ErrUsernameRequired = errors.New("username required")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

const rawTokenBytes = 32

type Config struct {
	Secret     []byte
	SessionTTL time.Duration
	Now        func() time.Time
}

type Usecase struct {
	users    user.Repo
	sessions session.Repo
	cfg      Config
}

func NewUseCase(users user.Repo, sessions session.Repo, cfg Config) *Usecase {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	return &Usecase{users: users, sessions: sessions, cfg: cfg}
}

func (u *Usecase) SessionTTL() time.Duration { return u.cfg.SessionTTL }

// Login maps a username to its user, creating it on first use, and opens a session.
// The returned value is the signed cookie content.
func (u *Usecase) Login(ctx context.Context, username string) (*user.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	usr, err := u.users.GetOrCreate(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("get or create user: %w", err)
	}

	raw, err := token.GenerateRawToken(rawTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("gen session token: %w", err)
	}
	now := u.cfg.Now()
	rec := &session.Session{
		UserID:    usr.ID,
		Username:  usr.Username,
		TokenHash: token.HashToken(raw),
		IssuedAt:  now,
		ExpiresAt: now.Add(u.cfg.SessionTTL),
	}
	if err := u.sessions.Create(ctx, rec); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	return usr, token.SignToken(raw, u.cfg.Secret), nil
}

// Resolve turns a cookie value into the identity it was issued for.
// Tampered, expired and revoked cookies all yield ErrUnauthenticated.
func (u *Usecase) Resolve(ctx context.Context, cookieValue string) (session.Identity, error) {
	if cookieValue == "" {
		return session.Identity{}, ErrUnauthenticated
	}
	raw, err := token.VerifyToken(cookieValue, u.cfg.Secret)
	if err != nil {
		return session.Identity{}, ErrUnauthenticated
	}
	rec, err := u.sessions.FindValid(ctx, token.HashToken(raw))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return session.Identity{}, ErrUnauthenticated
		}
		return session.Identity{}, fmt.Errorf("find session: %w", err)
	}
	return session.Identity{UserID: rec.UserID, Username: rec.Username}, nil
}

func (u *Usecase) Logout(ctx context.Context, cookieValue string) error {
	raw, err := token.VerifyToken(cookieValue, u.cfg.Secret)
	if err != nil {
		return nil
	}
	return u.sessions.Revoke(ctx, token.HashToken(raw))
}
