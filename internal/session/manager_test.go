package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobscraper-web/internal/domain"
	"jobscraper-web/internal/store"
	"jobscraper-web/internal/view"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	mu    sync.Mutex
	roles []domain.Role
}

func (f *countingFetcher) FetchJobData(_ context.Context, role domain.Role) (domain.JobData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, role)
	return domain.JobData{Jobs: []domain.Company{}}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(t *testing.T, f view.Fetcher, idle time.Duration) (*Manager, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	m := NewManager(func(id string) *view.View { return view.New(id, f) }, idle, nil)
	m.now = c.now
	t.Cleanup(m.CloseAll)
	return m, c
}

func TestCreateMountsDefaultRole(t *testing.T) {
	f := &countingFetcher{}
	m, _ := newTestManager(t, f, time.Minute)

	v, err := m.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(v.ID())
	require.NoError(t, err)

	v.Wait()
	f.mu.Lock()
	assert.Equal(t, []domain.Role{domain.DefaultRole}, f.roles)
	f.mu.Unlock()

	got, err := m.Get(v.ID())
	require.NoError(t, err)
	assert.Same(t, v, got)
	assert.Equal(t, 1, m.Len())
}

func TestEachCreateIsAFreshView(t *testing.T) {
	m, _ := newTestManager(t, &countingFetcher{}, time.Minute)

	a, err := m.Create()
	require.NoError(t, err)
	_, err = a.ToggleDarkMode()
	require.NoError(t, err)

	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.False(t, b.Snapshot().IsDarkMode)
}

func TestGetUnknown(t *testing.T) {
	m, _ := newTestManager(t, &countingFetcher{}, time.Minute)
	_, err := m.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = m.Attach("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCloseRemovesView(t *testing.T) {
	m, _ := newTestManager(t, &countingFetcher{}, time.Minute)
	v, err := m.Create()
	require.NoError(t, err)

	assert.True(t, m.Close(v.ID()))
	assert.False(t, m.Close(v.ID()))
	assert.True(t, v.Closed())
	_, err = m.Get(v.ID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSweepClosesIdleViews(t *testing.T) {
	m, c := newTestManager(t, &countingFetcher{}, 10*time.Minute)

	idle, err := m.Create()
	require.NoError(t, err)
	streaming, err := m.Create()
	require.NoError(t, err)
	active, err := m.Create()
	require.NoError(t, err)

	_, release, err := m.Attach(streaming.ID())
	require.NoError(t, err)

	c.t = c.t.Add(9 * time.Minute)
	_, err = m.Get(active.ID())
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	require.NoError(t, m.Sweep(context.Background()))

	assert.True(t, idle.Closed())
	assert.False(t, streaming.Closed())
	assert.False(t, active.Closed())
	assert.Equal(t, 2, m.Len())

	// once the stream ends the idle clock restarts from release time
	release()
	release()
	c.t = c.t.Add(11 * time.Minute)
	require.NoError(t, m.Sweep(context.Background()))
	assert.True(t, streaming.Closed())
	assert.True(t, active.Closed())
	assert.Equal(t, 0, m.Len())
}

// slowFetcher blocks until its context ends and then takes a while to settle,
// like a request torn down mid-flight.
type slowFetcher struct{ settle time.Duration }

func (f slowFetcher) FetchJobData(ctx context.Context, _ domain.Role) (domain.JobData, error) {
	<-ctx.Done()
	time.Sleep(f.settle)
	return domain.JobData{}, ctx.Err()
}

type countingRecorder struct{ n atomic.Int32 }

func (r *countingRecorder) RecordFetch(context.Context, store.FetchRecord) error {
	r.n.Add(1)
	return nil
}

func TestCloseAllWaitsForEveryCaller(t *testing.T) {
	rec := &countingRecorder{}
	m := NewManager(func(id string) *view.View {
		return view.New(id, slowFetcher{settle: 50 * time.Millisecond}, view.WithRecorder(rec))
	}, time.Hour, nil)

	for i := 0; i < 3; i++ {
		_, err := m.Create()
		require.NoError(t, err)
	}

	first := make(chan struct{})
	go func() {
		defer close(first)
		m.CloseAll()
	}()
	m.CloseAll()

	// whichever call returns, every fetch has already been recorded
	assert.Equal(t, int32(3), rec.n.Load())
	<-first
	assert.Zero(t, m.Len())
}

func TestCreateAfterCloseAll(t *testing.T) {
	m, _ := newTestManager(t, &countingFetcher{}, time.Minute)
	m.CloseAll()

	_, err := m.Create()
	require.ErrorIs(t, err, ErrShutdown)
	assert.Zero(t, m.Len())
}
