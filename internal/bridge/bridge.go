// Package bridge holds the shared state between the script editor and the
// remote runtimes ("places") that poll it for code: the place registry, the
// single editor target, and the per-context job queues.
//
// All state lives in one Bridge value. Every operation runs under its mutex
// for the operation's full duration, so concurrent polls observe a
// consistent target and a drain cannot race an enqueue or a deregistration.
// Notifications produced by an operation are queued while the lock is held
// and delivered by a single goroutine in the order they were produced, so no
// operation waits on a notifier.
package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbxbridge/rbxbridge/internal/logger"
)

// Bridge owns the registry, target state and job store.
type Bridge struct {
	notifier Notifier
	budget   int
	now      func() time.Time
	newID    func() string

	mu     sync.Mutex
	places *registry
	jobs   *jobStore
	target target
	outbox []event

	// pending holds events not yet handed to the notifier. delivering is
	// true while a delivery goroutine is running.
	deliveryMu   sync.Mutex
	deliveryIdle *sync.Cond
	pending      []event
	delivering   bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNotifier sets the UI notifier. Nil keeps the no-op default.
func WithNotifier(n Notifier) Option {
	return func(b *Bridge) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithBatchBudget sets the per-drain code length budget in bytes.
func WithBatchBudget(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.budget = n
		}
	}
}

// WithClock overrides the time source used to stamp jobs.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// WithIDGenerator overrides the job id source.
func WithIDGenerator(newID func() string) Option {
	return func(b *Bridge) { b.newID = newID }
}

// New creates an empty bridge: no places, no target, Edit context.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		notifier: nopNotifier{},
		budget:   DefaultBatchBudget,
		now:      time.Now,
		newID:    uuid.NewString,
		places:   newRegistry(),
		jobs:     newJobStore(),
		target:   target{context: ContextEdit},
	}
	b.deliveryIdle = sync.NewCond(&b.deliveryMu)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot is an immutable view of the bridge state.
type Snapshot struct {
	TargetPlaceID     *int64
	TargetPlaceName   string
	TargetContext     ExecutionContext
	ActiveContexts    []ExecutionContext
	ShowContextSwitch bool
	Places            []Place
	Queued            map[ExecutionContext]int
}

// StatusReport is a place's report that one of its contexts started or
// stopped.
type StatusReport struct {
	PlaceID   int64
	PlaceName string
	Context   ExecutionContext
	Active    bool
}

// Execute queues code for the current target context, stamped with the
// current target place. A job queued with no target waits for a poll that
// matches the target at drain time.
func (b *Bridge) Execute(code, file string) Job {
	var job Job
	b.locked(func() {
		job = Job{
			ID:            b.newID(),
			Code:          code,
			File:          file,
			TargetPlaceID: copyID(b.target.placeID),
			Context:       b.target.context,
			QueuedAt:      b.now(),
		}
		b.jobs.push(job)
	})
	logger.Infof("[bridge] queued %s (%d bytes) for the %s context", displayFile(job.File), len(job.Code), job.Context)
	return job
}

// Drain removes a byte-bounded batch from the queue of ctx. The poll must name
// the current target context and place (a nil placeID matches only an
// untargeted bridge); otherwise a *MismatchError advertising the target is
// returned. An empty queue yields a nil batch and a nil error. Removed jobs
// are gone whether or not the caller manages to deliver them.
func (b *Bridge) Drain(ctx ExecutionContext, placeID *int64) ([]Job, error) {
	var (
		batch []Job
		err   error
	)
	b.locked(func() {
		if ctx != b.target.context || !sameID(placeID, b.target.placeID) {
			err = &MismatchError{TargetContext: b.target.context, TargetPlaceID: copyID(b.target.placeID)}
			return
		}
		batch = b.jobs.take(ctx, b.budget)
	})
	if len(batch) > 0 {
		logger.Debugf("[bridge] drained %d job(s) from the %s queue", len(batch), ctx)
	}
	return batch, err
}

// Register adds a place, targeting it when nothing is targeted yet. An
// already known place is returned unchanged.
func (b *Bridge) Register(name string, id int64) Place {
	var p Place
	b.locked(func() {
		p = b.registerLocked(name, id).clone()
	})
	return p
}

// ReportActivity records that ctx became active or inactive on place id.
// Once Edit has reported it ended and no Server/Client is left active, the
// place's session is over and it is deregistered, whichever context stopped
// last. Unknown places are ignored.
func (b *Bridge) ReportActivity(id int64, ctx ExecutionContext, active bool) {
	b.locked(func() {
		if p, ok := b.places.get(id); ok {
			b.reportActivityLocked(p, ctx, active)
		}
	})
}

// ReportStatus ingests a status report: unknown places are registered, the
// display name is refreshed, then the activity change is applied.
//
// A report produces at most one state notification for a rename: when the
// activity change already notified, its snapshot carries the new name and no
// separate PlaceChanged is sent.
func (b *Bridge) ReportStatus(r StatusReport) {
	b.locked(func() {
		renamed := false
		p, ok := b.places.get(r.PlaceID)
		if !ok {
			if r.Context == ContextEdit && !r.Active {
				return
			}
			name := r.PlaceName
			if name == "" {
				name = fmt.Sprintf("Place %d", r.PlaceID)
			}
			p = b.registerLocked(name, r.PlaceID)
		} else if r.PlaceName != "" && r.PlaceName != p.Name {
			p.Name = r.PlaceName
			renamed = b.isTargetLocked(p.ID)
		}

		before := len(b.outbox)
		b.reportActivityLocked(p, r.Context, r.Active)
		if renamed && len(b.outbox) == before {
			b.emit(event{kind: eventPlaceChanged, snapshot: b.snapshotLocked()})
		}
	})
}

// Deregister removes a place. When it was the target the first remaining
// place is targeted, or the target is cleared. It reports whether the place
// was known.
func (b *Bridge) Deregister(id int64) bool {
	var ok bool
	b.locked(func() {
		ok = b.deregisterLocked(id)
	})
	return ok
}

// Ping handles a liveness probe. It returns true, after notifying Connected,
// when no context is active on any place.
func (b *Bridge) Ping() bool {
	var fresh bool
	b.locked(func() {
		fresh = !b.places.anyActive()
		if fresh {
			b.emit(event{kind: eventConnected})
		}
	})
	return fresh
}

// SetTargetPlace targets the place with the given id, or clears the target
// when id is nil or unknown. Every queued job is discarded.
func (b *Bridge) SetTargetPlace(id *int64) Snapshot {
	var s Snapshot
	b.locked(func() {
		b.setTargetPlaceLocked(id)
		s = b.snapshotLocked()
	})
	return s
}

// CycleTargetPlace targets the place registered after the current target.
func (b *Bridge) CycleTargetPlace() Snapshot {
	var s Snapshot
	b.locked(func() {
		next, ok := b.places.first()
		if b.target.placeID != nil {
			next, ok = b.places.after(*b.target.placeID)
		}
		if ok && !b.isTargetLocked(next.ID) {
			b.setTargetPlaceLocked(&next.ID)
		}
		s = b.snapshotLocked()
	})
	return s
}

// SetTargetContext selects the context new jobs are queued for and remembers
// it on the target place. Edit is always allowed; Server and Client must be
// active on the target place.
func (b *Bridge) SetTargetContext(ctx ExecutionContext) (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	b.locked(func() {
		err = b.setTargetContextLocked(ctx)
		s = b.snapshotLocked()
	})
	return s, err
}

// CycleTargetContext toggles between Server and Client. Both must be active.
func (b *Bridge) CycleTargetContext() (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	b.locked(func() {
		active := b.activeLocked()
		if !active.Has(ContextServer) || !active.Has(ContextClient) {
			err = newError(ErrCodeContextInactive, "server and client must both be active to switch")
		} else if b.target.context == ContextServer {
			err = b.setTargetContextLocked(ContextClient)
		} else {
			err = b.setTargetContextLocked(ContextServer)
		}
		s = b.snapshotLocked()
	})
	return s, err
}

// Snapshot returns the current state.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Places returns every known place in registration order.
func (b *Bridge) Places() []Place {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.places.list()
}

// ActiveContexts returns the active contexts of the target place.
func (b *Bridge) ActiveContexts() []ExecutionContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeLocked().Slice()
}

// TargetContext returns the context new jobs are queued for.
func (b *Bridge) TargetContext() ExecutionContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target.context
}

// Flush blocks until every notification produced so far has been delivered.
// It must not be called from a Notifier.
func (b *Bridge) Flush() {
	b.deliveryMu.Lock()
	defer b.deliveryMu.Unlock()
	for b.delivering {
		b.deliveryIdle.Wait()
	}
}

// locked runs fn under the state lock and queues the notifications fn
// produced. Queueing happens before the state lock is released so
// notifications from consecutive operations keep their order.
func (b *Bridge) locked(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
	if len(b.outbox) == 0 {
		return
	}
	events := b.outbox
	b.outbox = nil

	b.deliveryMu.Lock()
	defer b.deliveryMu.Unlock()
	b.pending = append(b.pending, events...)
	if !b.delivering {
		b.delivering = true
		go b.deliver()
	}
}

// deliver hands pending events to the notifier until none are left.
func (b *Bridge) deliver() {
	for {
		b.deliveryMu.Lock()
		events := b.pending
		b.pending = nil
		if len(events) == 0 {
			b.delivering = false
			b.deliveryIdle.Broadcast()
			b.deliveryMu.Unlock()
			return
		}
		b.deliveryMu.Unlock()

		for _, ev := range events {
			b.dispatch(ev)
		}
	}
}

func (b *Bridge) dispatch(ev event) {
	switch ev.kind {
	case eventPlaceChanged:
		b.notifier.PlaceChanged(ev.snapshot)
	case eventContextChanged:
		b.notifier.ContextChanged(ev.snapshot)
	case eventQueueCleared:
		b.notifier.QueueCleared(ev.context)
	case eventConnected:
		b.notifier.Connected()
	}
}

func (b *Bridge) snapshotLocked() Snapshot {
	active := b.activeLocked()
	s := Snapshot{
		TargetPlaceID:     copyID(b.target.placeID),
		TargetContext:     b.target.context,
		ActiveContexts:    active.Slice(),
		ShowContextSwitch: active.Has(ContextServer) && active.Has(ContextClient),
		Places:            b.places.list(),
		Queued:            b.jobs.counts(),
	}
	if p, ok := b.targetPlaceLocked(); ok {
		s.TargetPlaceName = p.Name
	}
	return s
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func displayFile(file string) string {
	if file == "" {
		return "<untitled>"
	}
	return file
}
