package bridge

import "github.com/rbxbridge/rbxbridge/internal/logger"

// target is the single place/context pair that receives queued jobs.
// Invariant: context is Edit or active on the targeted place.
type target struct {
	placeID *int64
	context ExecutionContext
}

type eventKind int

const (
	eventPlaceChanged eventKind = iota
	eventContextChanged
	eventQueueCleared
	eventConnected
)

type event struct {
	kind     eventKind
	snapshot Snapshot
	context  ExecutionContext
}

// The methods below must be called with b.mu held.

func (b *Bridge) emit(ev event) {
	b.outbox = append(b.outbox, ev)
}

func (b *Bridge) targetPlaceLocked() (*Place, bool) {
	if b.target.placeID == nil {
		return nil, false
	}
	return b.places.get(*b.target.placeID)
}

func (b *Bridge) isTargetLocked(id int64) bool {
	return b.target.placeID != nil && *b.target.placeID == id
}

// activeLocked returns the active set of the target place, read through so
// it always mirrors the place record.
func (b *Bridge) activeLocked() ContextSet {
	if p, ok := b.targetPlaceLocked(); ok {
		return p.ActiveContexts
	}
	return ContextSet{}
}

func (b *Bridge) registerLocked(name string, id int64) *Place {
	if p, ok := b.places.get(id); ok {
		return p
	}
	p := b.places.add(id, name)
	logger.Infof("[bridge] place registered: %s (%d)", name, id)
	if b.target.placeID == nil {
		b.setTargetPlaceLocked(&id)
	}
	return p
}

func (b *Bridge) deregisterLocked(id int64) bool {
	wasTarget := b.isTargetLocked(id)
	if !b.places.remove(id) {
		return false
	}
	logger.Infof("[bridge] place deregistered: %d", id)
	if !wasTarget {
		return true
	}
	if next, ok := b.places.first(); ok {
		b.setTargetPlaceLocked(&next.ID)
	} else {
		b.setTargetPlaceLocked(nil)
	}
	return true
}

func (b *Bridge) setTargetPlaceLocked(id *int64) {
	var p *Place
	if id != nil {
		p, _ = b.places.get(*id)
	}
	if p != nil {
		b.target.placeID = copyID(&p.ID)
		b.target.context = p.TargetContext
		if b.target.context != ContextEdit && !p.ActiveContexts.Has(b.target.context) {
			b.target.context = ContextEdit
		}
	} else {
		b.target.placeID = nil
		b.target.context = ContextEdit
	}
	b.onPlaceChangedLocked()
	b.onContextChangedLocked()
}

// onPlaceChangedLocked discards all pending work: jobs queued for the
// previous target must not reach the new one.
func (b *Bridge) onPlaceChangedLocked() {
	for _, c := range Contexts {
		if b.jobs.clear(c) > 0 {
			b.emit(event{kind: eventQueueCleared, context: c})
		}
	}
	b.emit(event{kind: eventPlaceChanged, snapshot: b.snapshotLocked()})
}

// onContextChangedLocked promotes an Edit target to Client, else Server,
// when one is active. An explicit Server/Client choice is never demoted.
func (b *Bridge) onContextChangedLocked() {
	active := b.activeLocked()
	if b.target.context == ContextEdit {
		switch {
		case active.Has(ContextClient):
			b.target.context = ContextClient
		case active.Has(ContextServer):
			b.target.context = ContextServer
		}
	}
	b.emit(event{kind: eventContextChanged, snapshot: b.snapshotLocked()})
}

func (b *Bridge) setTargetContextLocked(ctx ExecutionContext) error {
	if ctx.IsSession() && !b.activeLocked().Has(ctx) {
		return newError(ErrCodeContextInactive, "%s context is not active on the target place", ctx).
			WithDetail("context", ctx)
	}
	b.target.context = ctx
	if p, ok := b.targetPlaceLocked(); ok {
		p.TargetContext = ctx
	}
	b.emit(event{kind: eventContextChanged, snapshot: b.snapshotLocked()})
	return nil
}

func (b *Bridge) reportActivityLocked(p *Place, ctx ExecutionContext, active bool) {
	was := p.ActiveContexts.Has(ctx)
	if active {
		p.ActiveContexts[ctx] = struct{}{}
	} else {
		delete(p.ActiveContexts, ctx)
	}

	// The place's session is over once Edit has ended and no Server/Client
	// is left, whichever of them stops last.
	if ctx == ContextEdit {
		p.editEnded = !active
	}
	if !active && p.editEnded && !containsSession(p.ActiveContexts) {
		b.deregisterLocked(p.ID)
		return
	}
	if was == active || !b.isTargetLocked(p.ID) {
		return
	}

	if ctx.IsSession() {
		if active {
			b.target.context = ctx
			p.TargetContext = ctx
		} else {
			b.jobs.clear(ctx)
			b.emit(event{kind: eventQueueCleared, context: ctx})
			if b.target.context == ctx {
				b.target.context = ContextEdit
			}
		}
	}
	b.onContextChangedLocked()
}
