package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/NordCoder/homelab/internal/domain"
	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/domain/user"
)

var (
	_ user.Repo         = (*UserRepo)(nil)
	_ service.Repo      = (*ServiceRepo)(nil)
	_ session.Repo      = (*SessionRepo)(nil)
	_ outbox.Repository = (*OutboxRepo)(nil)
)

type UserRepo struct{ s *Store }

func (r *UserRepo) GetOrCreate(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.usernames[username]; ok {
		u := r.s.users[id]
		return &u, nil
	}
	r.s.nextUserID++
	u := user.User{ID: r.s.nextUserID, Username: username, CreatedAt: r.s.now()}
	r.s.users[u.ID] = u
	r.s.usernames[username] = u.ID
	return &u, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// Count reports the number of stored users.
func (r *UserRepo) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users)
}

type ServiceRepo struct{ s *Store }

func (r *ServiceRepo) Create(_ context.Context, svc *service.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[svc.OwnerID]; !ok {
		return errors.New("service insert: owner does not exist")
	}
	r.s.nextServiceID++
	now := r.s.now()
	svc.ID = r.s.nextServiceID
	svc.Status = service.StatusUnknown
	svc.CreatedAt, svc.UpdatedAt = now, now
	r.s.services[svc.ID] = *svc
	return nil
}

func (r *ServiceRepo) ListByOwner(_ context.Context, ownerID int64) ([]*service.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*service.Service
	for _, svc := range r.s.services {
		if svc.OwnerID == ownerID {
			c := svc
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ServiceRepo) UpdateStatus(_ context.Context, id int64, status service.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return domain.ErrNotFound
	}
	svc.Status = status
	svc.UpdatedAt = r.s.now()
	r.s.services[id] = svc
	return nil
}

func (r *ServiceRepo) DeleteOwned(_ context.Context, id, ownerID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc, ok := r.s.services[id]
	if !ok || svc.OwnerID != ownerID {
		return false, nil
	}
	delete(r.s.services, id)
	return true, nil
}

// Get returns a copy of a stored service regardless of owner.
func (r *ServiceRepo) Get(id int64) (service.Service, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	return svc, ok
}

type SessionRepo struct{ s *Store }

func (r *SessionRepo) Create(_ context.Context, sess *session.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[sess.TokenHash]; ok {
		return domain.ErrConflict
	}
	r.s.nextSessionID++
	sess.ID = r.s.nextSessionID
	r.s.sessions[sess.TokenHash] = *sess
	return nil
}

func (r *SessionRepo) FindValid(_ context.Context, tokenHash string) (*session.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[tokenHash]
	if !ok || r.s.revoked[tokenHash] || !sess.ExpiresAt.After(r.s.now()) {
		return nil, domain.ErrNotFound
	}
	u, ok := r.s.users[sess.UserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.Username = u.Username
	return &sess, nil
}

func (r *SessionRepo) Revoke(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[tokenHash]; ok {
		r.s.revoked[tokenHash] = true
	}
	return nil
}

type OutboxRepo struct{ s *Store }

func (r *OutboxRepo) Enqueue(_ context.Context, key string, kind outbox.Kind, data []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.outbox[key]; ok {
		return nil
	}
	now := r.s.now()
	r.s.outbox[key] = outbox.Message{
		IdempotencyKey: key,
		Kind:           kind,
		Data:           append([]byte(nil), data...),
		Status:         outbox.StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.outboxKeys = append(r.s.outboxKeys, key)
	return nil
}

func (r *OutboxRepo) PickBatch(_ context.Context, batch int, inProgressTTL time.Duration) ([]outbox.Message, error) {
	if batch <= 0 {
		return nil, errors.New("batch must be > 0")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var out []outbox.Message
	for _, key := range r.s.outboxKeys {
		if len(out) == batch {
			break
		}
		m := r.s.outbox[key]
		stale := m.Status == outbox.StatusInProgress && m.UpdatedAt.Before(now.Add(-inProgressTTL))
		if m.Status != outbox.StatusCreated && !stale {
			continue
		}
		m.Status = outbox.StatusInProgress
		m.UpdatedAt = now
		r.s.outbox[key] = m
		out = append(out, m)
	}
	return out, nil
}

func (r *OutboxRepo) MarkSuccess(_ context.Context, keys []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, key := range keys {
		if m, ok := r.s.outbox[key]; ok {
			m.Status = outbox.StatusSuccess
			m.UpdatedAt = now
			r.s.outbox[key] = m
		}
	}
	return nil
}

// Messages returns a snapshot of every outbox row in insertion order.
func (r *OutboxRepo) Messages() []outbox.Message {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]outbox.Message, 0, len(r.s.outboxKeys))
	for _, key := range r.s.outboxKeys {
		out = append(out, r.s.outbox[key])
	}
	return out
}
