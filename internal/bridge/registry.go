package bridge

import "slices"

// Place is one remote runtime session known to the bridge.
type Place struct {
	ID   int64
	Name string
	// TargetContext is the context last selected for this place. It is
	// re-adopted when the place becomes the target again.
	TargetContext ExecutionContext
	// ActiveContexts holds the contexts currently reporting activity.
	ActiveContexts ContextSet

	// editEnded records that the Edit session last reported it ended.
	editEnded bool
}

func (p *Place) clone() Place {
	cp := *p
	cp.ActiveContexts = p.ActiveContexts.Clone()
	return cp
}

// registry is the table of known places in registration order. It is not
// safe for concurrent use; Bridge serializes access.
type registry struct {
	order  []int64
	places map[int64]*Place
}

func newRegistry() *registry {
	return &registry{places: make(map[int64]*Place)}
}

func (r *registry) get(id int64) (*Place, bool) {
	p, ok := r.places[id]
	return p, ok
}

func (r *registry) add(id int64, name string) *Place {
	if p, ok := r.places[id]; ok {
		p.Name = name
		return p
	}
	p := &Place{
		ID:             id,
		Name:           name,
		TargetContext:  ContextEdit,
		ActiveContexts: make(ContextSet),
	}
	r.places[id] = p
	r.order = append(r.order, id)
	return p
}

func (r *registry) remove(id int64) bool {
	if _, ok := r.places[id]; !ok {
		return false
	}
	delete(r.places, id)
	r.order = slices.DeleteFunc(r.order, func(o int64) bool { return o == id })
	return true
}

// first returns the earliest registered place still present.
func (r *registry) first() (*Place, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.places[r.order[0]], true
}

// after returns the place registered after id, wrapping around. When id is
// unknown it behaves like first.
func (r *registry) after(id int64) (*Place, bool) {
	idx := slices.Index(r.order, id)
	if idx < 0 {
		return r.first()
	}
	return r.places[r.order[(idx+1)%len(r.order)]], true
}

func (r *registry) list() []Place {
	out := make([]Place, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.places[id].clone())
	}
	return out
}

// anyActive reports whether any context is active on any place.
func (r *registry) anyActive() bool {
	for _, p := range r.places {
		if len(p.ActiveContexts) > 0 {
			return true
		}
	}
	return false
}
