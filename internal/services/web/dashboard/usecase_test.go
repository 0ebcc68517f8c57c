package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/events"
	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/repository/memory"
)

type stubProber struct {
	mu       sync.Mutex
	statuses map[string]service.Status
	delay    time.Duration

	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (p *stubProber) Probe(_ context.Context, url string) service.Status {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		m := p.maxSeen.Load()
		if n <= m || p.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(p.delay)

	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.statuses[url]; ok {
		return st
	}
	return service.StatusDown
}

func (p *stubProber) set(url string, st service.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[url] = st
}

type fixture struct {
	st     *memory.Store
	prober *stubProber
	alice  session.Identity
	bob    session.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	a, err := st.Users().GetOrCreate(context.Background(), "alice")
	require.NoError(t, err)
	b, err := st.Users().GetOrCreate(context.Background(), "bob")
	require.NoError(t, err)
	return &fixture{
		st:     st,
		prober: &stubProber{statuses: map[string]service.Status{}},
		alice:  session.Identity{UserID: a.ID, Username: a.Username},
		bob:    session.Identity{UserID: b.ID, Username: b.Username},
	}
}

func (f *fixture) usecase(cfg Config) *Usecase {
	return NewUseCase(f.st.Services(), f.prober, f.st, f.st.Outbox(), cfg, zap.NewNop())
}

func TestRender_ProbesPersistsInOrder(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{Concurrency: 4})
	ctx := context.Background()

	f.prober.set("http://a", service.StatusRunning)
	f.prober.set("http://b", "Error 404")

	a, err := uc.AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)
	b, err := uc.AddService(ctx, f.alice, "B", "http://b")
	require.NoError(t, err)
	c, err := uc.AddService(ctx, f.alice, "C", "http://c")
	require.NoError(t, err)
	assert.Equal(t, service.StatusUnknown, a.Status)

	list, err := uc.Render(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, service.StatusRunning, list[0].Status)
	assert.Equal(t, service.Status("Error 404"), list[1].Status)
	assert.Equal(t, service.StatusDown, list[2].Status)

	for _, svc := range list {
		stored, ok := f.st.Services().Get(svc.ID)
		require.True(t, ok)
		assert.Equal(t, svc.Status, stored.Status)
	}
}

func TestRender_ReflectsLatestProbeOnly(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{Concurrency: 2})
	ctx := context.Background()

	f.prober.set("http://a", service.StatusRunning)
	svc, err := uc.AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)

	_, err = uc.Render(ctx, f.alice)
	require.NoError(t, err)

	f.prober.set("http://a", "Error 503")
	list, err := uc.Render(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, service.Status("Error 503"), list[0].Status)

	stored, _ := f.st.Services().Get(svc.ID)
	assert.Equal(t, service.Status("Error 503"), stored.Status)
}

func TestRender_ConcurrencyIsBounded(t *testing.T) {
	for _, limit := range []int{1, 3} {
		f := newFixture(t)
		f.prober.delay = 20 * time.Millisecond
		uc := f.usecase(Config{Concurrency: limit})
		for i := 0; i < 8; i++ {
			_, err := uc.AddService(context.Background(), f.alice, "svc", "http://x")
			require.NoError(t, err)
		}

		_, err := uc.Render(context.Background(), f.alice)
		require.NoError(t, err)
		assert.LessOrEqual(t, int(f.prober.maxSeen.Load()), limit)
		assert.GreaterOrEqual(t, int(f.prober.maxSeen.Load()), 1)
	}
}

func TestRender_OnlyOwnServices(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{Concurrency: 1})
	ctx := context.Background()

	_, err := uc.AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)

	list, err := uc.Render(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingUpdates struct {
	service.Repo
}

func (failingUpdates) UpdateStatus(context.Context, int64, service.Status) error {
	return errors.New("db down")
}

func TestRender_StoreFailureFailsRender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.usecase(Config{}).AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)

	uc := NewUseCase(failingUpdates{f.st.Services()}, f.prober, f.st, nil, Config{Concurrency: 2}, zap.NewNop())
	_, err = uc.Render(ctx, f.alice)
	assert.Error(t, err)
}

func TestRender_EventsOnStatusChange(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{Concurrency: 2, EmitEvents: true})
	ctx := context.Background()

	f.prober.set("http://a", service.StatusRunning)
	svc, err := uc.AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)

	_, err = uc.Render(ctx, f.alice)
	require.NoError(t, err)
	_, err = uc.Render(ctx, f.alice)
	require.NoError(t, err)

	msgs := f.st.Outbox().Messages()
	require.Len(t, msgs, 1)

	var ev events.StatusChanged
	require.NoError(t, json.Unmarshal(msgs[0].Data, &ev))
	assert.Equal(t, svc.ID, ev.ServiceID)
	assert.Equal(t, "Unknown", ev.Old)
	assert.Equal(t, "Running", ev.New)

	f.prober.set("http://a", service.StatusDown)
	_, err = uc.Render(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, f.st.Outbox().Messages(), 2)
}

func TestRender_NoEventsWhenDisabled(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{Concurrency: 2})
	_, err := uc.AddService(context.Background(), f.alice, "A", "http://a")
	require.NoError(t, err)

	_, err = uc.Render(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, f.st.Outbox().Messages())
}

func TestAddService_Validation(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{})

	for _, tc := range [][2]string{{"", "http://a"}, {"A", ""}, {"  ", " \t"}} {
		_, err := uc.AddService(context.Background(), f.alice, tc[0], tc[1])
		assert.ErrorIs(t, err, ErrServiceInvalid)
	}

	svc, err := uc.AddService(context.Background(), f.alice, "  NAS ", " http://nas ")
	require.NoError(t, err)
	assert.Equal(t, "NAS", svc.Name)
	assert.Equal(t, "http://nas", svc.URL)
}

func TestDelete_CrossUserIsNoOp(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(Config{})
	ctx := context.Background()

	svc, err := uc.AddService(ctx, f.alice, "A", "http://a")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, f.bob, svc.ID))
	_, ok := f.st.Services().Get(svc.ID)
	assert.True(t, ok)

	require.NoError(t, uc.Delete(ctx, f.alice, 9999))

	require.NoError(t, uc.Delete(ctx, f.alice, svc.ID))
	_, ok = f.st.Services().Get(svc.ID)
	assert.False(t, ok)
}

// deletingProber removes a service while it is being probed, like a delete
// from another tab landing mid-render.
type deletingProber struct {
	*stubProber
	st     *memory.Store
	url    string
	target *service.Service
}

func (p *deletingProber) Probe(ctx context.Context, url string) service.Status {
	if url == p.url {
		_, _ = p.st.Services().DeleteOwned(ctx, p.target.ID, p.target.OwnerID)
	}
	return p.stubProber.Probe(ctx, url)
}

func TestRender_ServiceDeletedMidRenderIsSkipped(t *testing.T) {
	for _, emit := range []bool{false, true} {
		f := newFixture(t)
		ctx := context.Background()
		add := f.usecase(Config{})

		f.prober.set("http://a", service.StatusRunning)
		f.prober.set("http://c", service.StatusRunning)
		a, err := add.AddService(ctx, f.alice, "A", "http://a")
		require.NoError(t, err)
		b, err := add.AddService(ctx, f.alice, "B", "http://b")
		require.NoError(t, err)
		c, err := add.AddService(ctx, f.alice, "C", "http://c")
		require.NoError(t, err)

		p := &deletingProber{stubProber: f.prober, st: f.st, url: "http://b", target: b}
		uc := NewUseCase(f.st.Services(), p, f.st, f.st.Outbox(), Config{Concurrency: 1, EmitEvents: emit}, zap.NewNop())

		list, err := uc.Render(ctx, f.alice)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, []int64{a.ID, c.ID}, []int64{list[0].ID, list[1].ID})
		assert.Equal(t, service.StatusRunning, list[1].Status)

		_, ok := f.st.Services().Get(b.ID)
		assert.False(t, ok)
	}
}
