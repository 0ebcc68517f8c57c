package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/events"
	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/obs/retry"
	"github.com/NordCoder/homelab/internal/repository/memory"
)

type fakePublisher struct {
	mu    sync.Mutex
	got   []events.StatusChanged
	fails int
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, ev events.StatusChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("broker unavailable")
	}
	f.got = append(f.got, ev)
	return nil
}

func noWait() retry.Policy {
	return retry.Policy{Attempts: 1, Backoff: retry.ExpoJitter{Base: time.Millisecond, Max: time.Millisecond}}
}

func enqueue(t *testing.T, repo outbox.Repository, key string, ev events.StatusChanged) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(context.Background(), key, outbox.KindServiceStatusChanged, data))
}

func TestRunner_TickPublishesAndMarks(t *testing.T) {
	st := memory.NewStore()
	repo := st.Outbox()
	pub := &fakePublisher{}

	enqueue(t, repo, "k1", events.StatusChanged{ServiceID: 1, Old: "Unknown", New: "Running"})
	enqueue(t, repo, "k2", events.StatusChanged{ServiceID: 2, Old: "Running", New: "Down"})

	r := NewOutboxRunner(zap.NewNop(), repo, MakeGlobalOutboxHandler(pub, noWait()), Config{BatchSize: 10})
	assert.Equal(t, 2, r.Tick(context.Background()))

	require.Len(t, pub.got, 2)
	assert.Equal(t, "Running", pub.got[0].New)
	assert.Equal(t, int64(2), pub.got[1].ServiceID)
	for _, m := range repo.Messages() {
		assert.Equal(t, outbox.StatusSuccess, m.Status)
	}
	assert.Equal(t, 0, r.Tick(context.Background()))
}

func TestRunner_FailedMessageStaysInProgress(t *testing.T) {
	st := memory.NewStore()
	repo := st.Outbox()
	pub := &fakePublisher{fails: 1}

	enqueue(t, repo, "k1", events.StatusChanged{ServiceID: 1, New: "Down"})

	r := NewOutboxRunner(zap.NewNop(), repo, MakeGlobalOutboxHandler(pub, noWait()), Config{BatchSize: 10, InProgressTTL: time.Hour})
	assert.Equal(t, 0, r.Tick(context.Background()))
	assert.Empty(t, pub.got)
	assert.Equal(t, outbox.StatusInProgress, repo.Messages()[0].Status)
}

func TestRunner_RetryPolicyRecovers(t *testing.T) {
	st := memory.NewStore()
	repo := st.Outbox()
	pub := &fakePublisher{fails: 2}

	enqueue(t, repo, "k1", events.StatusChanged{ServiceID: 1, New: "Down"})

	pol := retry.Policy{Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond, Max: 2 * time.Millisecond}}
	r := NewOutboxRunner(zap.NewNop(), repo, MakeGlobalOutboxHandler(pub, pol), Config{BatchSize: 10})
	assert.Equal(t, 1, r.Tick(context.Background()))
	assert.Len(t, pub.got, 1)
}

func TestGlobalHandler_UnknownKind(t *testing.T) {
	_, err := MakeGlobalOutboxHandler(&fakePublisher{}, noWait())(outbox.Kind(99))
	assert.Error(t, err)
}

func TestGlobalHandler_BadPayload(t *testing.T) {
	h, err := MakeGlobalOutboxHandler(&fakePublisher{}, noWait())(outbox.KindServiceStatusChanged)
	require.NoError(t, err)
	assert.Error(t, h(context.Background(), []byte("{")))
}

func TestRunner_StartStops(t *testing.T) {
	st := memory.NewStore()
	pub := &fakePublisher{}
	enqueue(t, st.Outbox(), "k1", events.StatusChanged{ServiceID: 1, New: "Running"})

	r := NewOutboxRunner(zap.NewNop(), st.Outbox(), MakeGlobalOutboxHandler(pub, noWait()),
		Config{Workers: 2, BatchSize: 10, WaitTime: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	require.Eventually(t, func() bool {
		return st.Outbox().Messages()[0].Status == outbox.StatusSuccess
	}, time.Second, 5*time.Millisecond)
	cancel()
	r.Wait()
}
