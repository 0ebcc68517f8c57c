// Package memory provides in-memory implementations of the storage ports.
//
// It backs storage.driver=memory (local runs without PostgreSQL) and the
// HTTP-level tests. All data is lost when the process exits.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/domain/user"
)

// Store holds every table behind one lock. The repository types are thin views over it.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	users      map[int64]user.User
	usernames  map[string]int64
	services   map[int64]service.Service
	sessions   map[string]session.Session
	revoked    map[string]bool
	outbox     map[string]outbox.Message
	outboxKeys []string

	nextUserID    int64
	nextServiceID int64
	nextSessionID int64
}

func NewStore() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[int64]user.User),
		usernames: make(map[string]int64),
		services:  make(map[int64]service.Service),
		sessions:  make(map[string]session.Session),
		revoked:   make(map[string]bool),
		outbox:    make(map[string]outbox.Message),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Services() *ServiceRepo { return &ServiceRepo{s: s} }
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s: s} }
func (s *Store) Outbox() *OutboxRepo    { return &OutboxRepo{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithTx runs fn directly; single-process memory writes need no rollback support.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
