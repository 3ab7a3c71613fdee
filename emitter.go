package eventing

import (
	"fmt"
	"reflect"
	"sync"
)

// Emitter materializes a producer type's declared events for one owner
// instance and holds the raise capability for all of them.
//
// Usage Pattern:
// Always hold the emitter as a private named field, never anonymously
// embedded; promotion of Raise onto the owner's public surface would
// hand the dispatch capability to every caller:
//
//	type OrderService struct {
//	    events *eventing.Emitter // CORRECT - private field
//	    // NOT: *eventing.Emitter - avoid anonymous embedding
//	}
//
// The owner raises through the private field; consumers reach only the
// registration surface, either through bound Slot fields or through an
// accessor the owner chooses to expose:
//
//	func (s *OrderService) Done() *eventing.Event {
//	    ev, _ := s.events.Event("OnDone")
//	    return ev
//	}
//
// Exactly one Event exists per (emitter, name) pair; it is created on
// first access and lives as long as the emitter. Binding the emitter to
// the owner at construction ties every event's lifetime to the owner's,
// with no shared lookup tables keeping instances alive.
//
// Thread Safety:
// All methods are safe for concurrent use. Materialization is atomic
// per event name.
type Emitter struct {
	owner  any
	schema *schema
	cfg    config

	mu      sync.Mutex
	events  map[Key]*Event
	raisers map[Key]Raiser
}

// NewEmitter binds the declared events of owner's type to this owner
// instance. The owner should be a pointer to its struct; exported Slot
// fields are populated during binding so consumers can register through
// them directly.
//
// Fails with ErrNilOwner for a nil owner and ErrUndeclared for a type
// that declares no events, through neither Define nor Slot fields.
func NewEmitter(owner any, opts ...Option) (*Emitter, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	cfg := currentConfig(opts...)

	v := reflect.ValueOf(owner)
	typ := v.Type()
	if typ.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, ErrNilOwner
		}
		typ = typ.Elem()
	}

	sch, err := schemaFor(typ, cfg)
	if err != nil {
		return nil, err
	}

	m := &Emitter{
		owner:   owner,
		schema:  sch,
		cfg:     cfg,
		events:  make(map[Key]*Event, len(sch.order)),
		raisers: make(map[Key]Raiser, len(sch.order)),
	}

	// Bind exported Slot fields to their events.
	if v.Kind() == reflect.Pointer {
		elem := v.Elem()
		for name, path := range sch.fields {
			fv := elem.FieldByIndex(path)
			if !fv.CanSet() {
				continue
			}
			ev, _, err := m.materialize(name)
			if err != nil {
				return nil, err
			}
			fv.Set(reflect.ValueOf(Slot{name: name, event: ev}))
		}
	}

	return m, nil
}

// materialize returns the event and raiser for name, creating and
// caching them on first access.
func (m *Emitter) materialize(name Key) (*Event, Raiser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev, ok := m.events[name]; ok {
		return ev, m.raisers[name], nil
	}
	sig, ok := m.schema.slots[name]
	if !ok {
		return nil, Raiser{}, fmt.Errorf("%w: %q on %s", ErrUnknownEvent, name, m.schema.typ)
	}
	ev, err := newEvent(m.owner, sig, m.cfg)
	if err != nil {
		return nil, Raiser{}, err
	}
	r := Raiser{event: ev}
	m.events[name] = ev
	m.raisers[name] = r
	return ev, r, nil
}

// Raise dispatches the named event to its listeners, validating args
// against the declared signature. See Raiser.Raise for dispatch
// semantics.
//
// Raising through a nil or unbound emitter fails with ErrNotOwner; an
// undeclared name fails with ErrUnknownEvent.
func (m *Emitter) Raise(name Key, args ...any) error {
	if m == nil || m.owner == nil {
		return ErrNotOwner
	}
	_, r, err := m.materialize(name)
	if err != nil {
		return err
	}
	return r.Raise(args...)
}

// Event returns the registration surface for the named event,
// materializing it on first access. Fails with ErrUnknownEvent for a
// name the owner type never declared.
func (m *Emitter) Event(name Key) (*Event, error) {
	if m == nil || m.owner == nil {
		return nil, fmt.Errorf("%w: emitter not bound", ErrUnknownEvent)
	}
	ev, _, err := m.materialize(name)
	return ev, err
}

// Events returns the declared event names in declaration order,
// inherited events first.
func (m *Emitter) Events() []Key {
	out := make([]Key, len(m.schema.order))
	copy(out, m.schema.order)
	return out
}

// Clear removes all listeners from the named event and returns how many
// were removed. An event that was never materialized has none.
func (m *Emitter) Clear(name Key) int {
	m.mu.Lock()
	ev, ok := m.events[name]
	m.mu.Unlock()

	if !ok {
		return 0
	}
	return ev.Clear()
}

// ClearAll removes all listeners from every materialized event and
// returns how many were removed.
func (m *Emitter) ClearAll() int {
	count := 0
	for _, ev := range m.snapshot() {
		count += ev.Clear()
	}
	return count
}

// Metrics returns metrics aggregated across the emitter's materialized
// events, plus the declaration conflicts recorded when the owner type's
// schema was built.
func (m *Emitter) Metrics() Metrics {
	agg := Metrics{ConflictWarnings: m.schema.conflicts}
	for _, ev := range m.snapshot() {
		em := ev.Metrics()
		agg.RaisesTotal += em.RaisesTotal
		agg.ListenersInvoked += em.ListenersInvoked
		agg.SignatureFailures += em.SignatureFailures
		agg.RegisteredListeners += em.RegisteredListeners
		if em.LastRaise > agg.LastRaise {
			agg.LastRaise = em.LastRaise
		}
	}
	return agg
}

// snapshot copies the materialized event set under lock.
func (m *Emitter) snapshot() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out
}
