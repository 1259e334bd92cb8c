// Package flight enforces one outstanding call per operation per view
// session. Starting a call cancels the pending one in the same slot, and a
// superseded call's resolution is dropped.
package flight

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a slot.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("flight registry closed")

// Func performs one call. It must return promptly once ctx is done.
type Func func(ctx context.Context) (any, error)

// ErrorView is the display-safe form of a failed call.
type ErrorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is a copy of a slot at one instant.
type Snapshot struct {
	SessionID  string     `json:"sessionId"`
	Operation  string     `json:"operation"`
	RunID      string     `json:"runId,omitempty"`
	Status     Status     `json:"status"`
	Result     any        `json:"result,omitempty"`
	Error      *ErrorView `json:"error,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Hooks observe slot transitions. Any of them may be nil.
type Hooks struct {
	Started    func(op string)
	Finished   func(op string, status Status, d time.Duration)
	Superseded func(op string)
}

// Options configures a Registry.
type Options struct {
	// IdleTTL is how long an untouched session survives Sweep.
	IdleTTL time.Duration
	// Describe turns an error into a display-safe view.
	Describe func(error) ErrorView
	Hooks    Hooks
	Now      func() time.Time
}

type key struct {
	session string
	op      string
}

type slot struct {
	gen      uint64
	runID    string
	status   Status
	result   any
	errView  *ErrorView
	cancel   context.CancelFunc
	started  time.Time
	finished time.Time
	touched  time.Time
}

// Registry holds every (session, operation) slot.
type Registry struct {
	mu     sync.Mutex
	slots  map[key]*slot
	closed bool
	// gen is registry-wide so a slot recreated after Sweep never reuses a
	// generation still held by an orphaned run.
	gen uint64

	base       context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup

	ttl      time.Duration
	describe func(error) ErrorView
	hooks    Hooks
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.Describe == nil {
		opts.Describe = defaultDescribe
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	base, cancel := context.WithCancel(context.Background())
	return &Registry{
		slots:      make(map[key]*slot),
		base:       base,
		cancelBase: cancel,
		ttl:        opts.IdleTTL,
		describe:   opts.Describe,
		hooks:      opts.Hooks,
		now:        opts.Now,
	}
}

// Start cancels any pending call in the slot and runs fn in the background.
// The returned snapshot is the new pending state.
func (r *Registry) Start(sessionID, op string, fn Func) (Snapshot, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Snapshot{}, ErrClosed
	}

	k := key{session: sessionID, op: op}
	s := r.slots[k]
	if s == nil {
		s = &slot{}
		r.slots[k] = s
	}
	superseded := s.status == StatusPending
	if superseded && s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(r.base)
	now := r.now()
	r.gen++
	s.gen = r.gen
	s.runID = uuid.NewString()
	s.status = StatusPending
	s.result = nil
	s.errView = nil
	s.cancel = cancel
	s.started = now
	s.finished = time.Time{}
	s.touched = now

	gen := s.gen
	snap := s.snapshot(sessionID, op)
	r.wg.Add(1)
	r.mu.Unlock()

	if superseded && r.hooks.Superseded != nil {
		r.hooks.Superseded(op)
	}
	if r.hooks.Started != nil {
		r.hooks.Started(op)
	}

	go r.run(ctx, cancel, k, s, gen, fn)
	return snap, nil
}

func (r *Registry) run(ctx context.Context, cancel context.CancelFunc, k key, owner *slot, gen uint64, fn Func) {
	defer r.wg.Done()
	defer cancel()

	result, err := fn(ctx)

	r.mu.Lock()
	s := r.slots[k]
	if s == nil || s != owner || s.gen != gen {
		// superseded, canceled, or swept
		r.mu.Unlock()
		return
	}
	now := r.now()
	s.finished = now
	s.cancel = nil
	switch {
	case err == nil:
		s.status = StatusSucceeded
		s.result = result
	case ctx.Err() != nil:
		s.status = StatusCanceled
		view := r.describe(err)
		s.errView = &view
	default:
		s.status = StatusFailed
		view := r.describe(err)
		s.errView = &view
	}
	status := s.status
	elapsed := now.Sub(s.started)
	r.mu.Unlock()

	if r.hooks.Finished != nil {
		r.hooks.Finished(k.op, status, elapsed)
	}
}

// Get returns the slot state; unknown slots are idle.
func (r *Registry) Get(sessionID, op string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slots[key{session: sessionID, op: op}]
	if s == nil {
		return Snapshot{SessionID: sessionID, Operation: op, Status: StatusIdle}
	}
	s.touched = r.now()
	return s.snapshot(sessionID, op)
}

// Cancel aborts a pending call. It reports whether anything was pending.
func (r *Registry) Cancel(sessionID, op string) (Snapshot, bool) {
	r.mu.Lock()
	s := r.slots[key{session: sessionID, op: op}]
	if s == nil {
		r.mu.Unlock()
		return Snapshot{SessionID: sessionID, Operation: op, Status: StatusIdle}, false
	}
	now := r.now()
	s.touched = now
	if s.status != StatusPending {
		snap := s.snapshot(sessionID, op)
		r.mu.Unlock()
		return snap, false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	// a late resolution of the aborted call must not land
	r.gen++
	s.gen = r.gen
	s.status = StatusCanceled
	s.finished = now
	s.errView = &ErrorView{Kind: "canceled", Message: "The request was canceled."}
	elapsed := now.Sub(s.started)
	snap := s.snapshot(sessionID, op)
	r.mu.Unlock()

	if r.hooks.Finished != nil {
		r.hooks.Finished(op, StatusCanceled, elapsed)
	}
	return snap, true
}

// Sweep drops sessions untouched for longer than the idle TTL, aborting
// their pending calls. It returns the number of slots removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for k, s := range r.slots {
		if s.touched.After(cutoff) {
			continue
		}
		if s.cancel != nil {
			s.cancel()
		}
		delete(r.slots, k)
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len reports the number of live slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Close cancels every pending call and waits for them to return.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancelBase()
	r.wg.Wait()
}

func (s *slot) snapshot(sessionID, op string) Snapshot {
	snap := Snapshot{
		SessionID: sessionID,
		Operation: op,
		RunID:     s.runID,
		Status:    s.status,
		Result:    s.result,
	}
	if s.errView != nil {
		view := *s.errView
		snap.Error = &view
	}
	if !s.started.IsZero() {
		started := s.started
		snap.StartedAt = &started
	}
	if !s.finished.IsZero() {
		finished := s.finished
		snap.FinishedAt = &finished
	}
	return snap
}

func defaultDescribe(err error) ErrorView {
	if errors.Is(err, context.Canceled) {
		return ErrorView{Kind: "canceled", Message: "The request was canceled."}
	}
	return ErrorView{Kind: "failed", Message: "The request failed."}
}
