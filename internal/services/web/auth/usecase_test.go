package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/repository/memory"
)

func newUsecase(st *memory.Store) *Usecase {
	return NewUseCase(st.Users(), st.Sessions(), Config{Secret: []byte("test-secret"), SessionTTL: time.Hour})
}

func TestLogin_IdempotentUserID(t *testing.T) {
	st := memory.NewStore()
	uc := newUsecase(st)
	ctx := context.Background()

	first, c1, err := uc.Login(ctx, "alice")
	require.NoError(t, err)
	second, c2, err := uc.Login(ctx, "  alice ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, c1, c2)
	assert.Equal(t, 1, st.Users().Count())
}

func TestLogin_EmptyUsername(t *testing.T) {
	st := memory.NewStore()
	uc := newUsecase(st)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, _, err := uc.Login(context.Background(), name)
		assert.ErrorIs(t, err, ErrUsernameRequired)
	}
	assert.Equal(t, 0, st.Users().Count())
}

func TestResolve(t *testing.T) {
	st := memory.NewStore()
	uc := newUsecase(st)
	ctx := context.Background()

	usr, cookie, err := uc.Login(ctx, "alice")
	require.NoError(t, err)

	id, err := uc.Resolve(ctx, cookie)
	require.NoError(t, err)
	assert.Equal(t, session.Identity{UserID: usr.ID, Username: "alice"}, id)

	_, err = uc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = uc.Resolve(ctx, cookie+"x")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other := NewUseCase(st.Users(), st.Sessions(), Config{Secret: []byte("other")})
	_, err = other.Resolve(ctx, cookie)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, uc.Logout(ctx, cookie))
	_, err = uc.Resolve(ctx, cookie)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_Expired(t *testing.T) {
	st := memory.NewStore()
	issued := time.Now().UTC().Add(-2 * time.Hour)
	uc := NewUseCase(st.Users(), st.Sessions(), Config{
		Secret:     []byte("s"),
		SessionTTL: time.Hour,
		Now:        func() time.Time { return issued },
	})

	_, cookie, err := uc.Login(context.Background(), "alice")
	require.NoError(t, err)
	_, err = uc.Resolve(context.Background(), cookie)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

type failingSessions struct{ session.Repo }

func (failingSessions) FindValid(context.Context, string) (*session.Session, error) {
	return nil, errors.New("db down")
}

func TestResolve_StoreErrorIsNotUnauthenticated(t *testing.T) {
	st := memory.NewStore()
	uc := newUsecase(st)
	_, cookie, err := uc.Login(context.Background(), "alice")
	require.NoError(t, err)

	broken := NewUseCase(st.Users(), failingSessions{st.Sessions()}, Config{Secret: []byte("test-secret")})
	_, err = broken.Resolve(context.Background(), cookie)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestLogout_IgnoresGarbage(t *testing.T) {
	uc := newUsecase(memory.NewStore())
	assert.NoError(t, uc.Logout(context.Background(), "garbage"))
}
