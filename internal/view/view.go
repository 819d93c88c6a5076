package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"jobscraper-web/internal/backend"
	"jobscraper-web/internal/domain"
	"jobscraper-web/internal/events"
	"jobscraper-web/internal/store"
)

var ErrClosed = errors.New("view closed")

type Fetcher interface {
	FetchJobData(ctx context.Context, role domain.Role) (domain.JobData, error)
}

// Recorder receives one record per settled fetch.
type Recorder interface {
	RecordFetch(ctx context.Context, r store.FetchRecord) error
}

// View owns the state of one browsing context: role selection, the fetch
// lifecycle and the theme flag.
//
// Every SelectRole is tagged with an increasing sequence number. A fetch
// that settles after a newer selection was made is discarded, so the state
// always reflects the latest selection.
type View struct {
	id      string
	fetcher Fetcher
	rec     Recorder
	log     *slog.Logger
	hub     *events.Hub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  State
	seq    uint64
	closed bool
}

type Option func(*View)

func WithRecorder(r Recorder) Option {
	return func(v *View) {
		v.rec = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(v *View) {
		v.log = l
	}
}

func New(id string, f Fetcher, options ...Option) *View {
	ctx, cancel := context.WithCancel(context.Background())

	v := &View{
		id:      id,
		fetcher: f,
		log:     slog.Default(),
		hub:     events.NewHub(),
		ctx:     ctx,
		cancel:  cancel,
		state:   initialState(),
	}

	for _, option := range options {
		option(v)
	}

	v.log = v.log.With("view", id)
	return v
}

func (v *View) ID() string { return v.id }

// Events streams encoded state and theme events for this view.
func (v *View) Events() *events.Hub { return v.hub }

func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Mount issues the initial fetch for the current selection.
func (v *View) Mount() (<-chan struct{}, error) {
	return v.SelectRole(v.Snapshot().SelectedRole)
}

// SelectRole records the selection and starts a fetch for it. The returned
// channel is closed once that fetch has settled and been applied or discarded.
func (v *View) SelectRole(role domain.Role) (<-chan struct{}, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, string(role))
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrClosed
	}
	v.seq++
	seq := v.seq
	v.state.SelectedRole = role
	v.state.IsLoading = true
	v.state.Phase = PhaseLoading
	v.state.Rev++
	v.publishLocked(events.TypeState, v.snapshotLocked())
	v.wg.Add(1)
	v.mu.Unlock()

	done := make(chan struct{})
	go v.fetch(seq, role, done)
	return done, nil
}

// ToggleDarkMode flips the theme flag and returns the new value. Loading
// state and data are left alone.
func (v *View) ToggleDarkMode() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false, ErrClosed
	}
	v.state.IsDarkMode = !v.state.IsDarkMode
	v.state.Rev++
	v.publishLocked(events.TypeTheme, map[string]any{"dark": v.state.IsDarkMode})
	return v.state.IsDarkMode, nil
}

// Close aborts in-flight fetches and closes the event stream. It does not
// wait; use Wait for that.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.cancel()
	v.hub.Close()
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Wait blocks until every fetch started by this view has settled.
func (v *View) Wait() { v.wg.Wait() }

func (v *View) fetch(seq uint64, role domain.Role, done chan struct{}) {
	defer v.wg.Done()
	defer close(done)

	start := time.Now()
	data, err := v.fetcher.FetchJobData(v.ctx, role)
	dur := time.Since(start)

	v.mu.Lock()
	applied := seq == v.seq && !v.closed
	if applied {
		v.state.IsLoading = false
		if err == nil {
			v.state.CurrentData = &data
			v.state.Phase = PhaseLoaded
		} else {
			// keep whatever was shown before
			v.state.Phase = PhaseStale
		}
		v.state.Rev++
		v.publishLocked(events.TypeState, v.snapshotLocked())
	}
	v.mu.Unlock()

	if err != nil {
		v.log.Warn("fetching job data failed",
			"role", role, "seq", seq, "applied", applied,
			"outcome", backend.Outcome(err), "status", backend.StatusCode(err), "err", err)
	} else {
		v.log.Debug("fetched job data",
			"role", role, "seq", seq, "applied", applied,
			"companies", len(data.Jobs), "dur_ms", dur.Milliseconds())
	}

	v.record(seq, role, start, dur, applied, data, err)
}

func (v *View) record(seq uint64, role domain.Role, start time.Time, dur time.Duration, applied bool, data domain.JobData, err error) {
	if v.rec == nil {
		return
	}

	r := store.FetchRecord{
		ViewID:     v.id,
		Seq:        seq,
		Role:       string(role),
		Outcome:    backend.Outcome(err),
		StatusCode: backend.StatusCode(err),
		Applied:    applied,
		Companies:  len(data.Jobs),
		StartedAt:  start,
		DurationMS: dur.Milliseconds(),
	}
	if err != nil {
		r.Error = err.Error()
	}

	// The view context may already be cancelled; the record should still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rerr := v.rec.RecordFetch(ctx, r); rerr != nil {
		v.log.Error("recording fetch failed", "seq", seq, "err", rerr)
	}
}

func (v *View) snapshotLocked() State {
	s := v.state
	if s.CurrentData != nil {
		d := *s.CurrentData
		s.CurrentData = &d
	}
	return s
}

func (v *View) publishLocked(typ string, data any) {
	evt, err := events.Encode(typ, v.seq, "", data)
	if err != nil {
		v.log.Error("encoding event failed", "type", typ, "err", err)
		return
	}
	v.hub.Publish(evt)
}
