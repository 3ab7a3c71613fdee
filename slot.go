package eventing

// Slot is the consumer-facing view of a declared event, bound to one
// owner instance.
//
// A producer exposes its events by declaring exported Slot fields that
// NewEmitter binds at construction:
//
//	type Producer struct {
//		events *eventing.Emitter
//		OnDone eventing.Slot
//	}
//
// The field name is the event name; a field may carry an `event:"..."`
// struct tag to map a name that is not a valid Go identifier:
//
//	OnDone eventing.Slot `event:"producer.done"`
//
// A Slot field also acts as a declaration in its own right: a type with
// Slot fields needs no Define call unless its events carry signatures.
// When both exist, the explicit field pre-declares the name and Define
// supplies the signature.
//
// Slots expose registration, removal, and clearing, but no raise; only
// the owner, through its private Emitter, can dispatch.
type Slot struct {
	name  Key
	event *Event
}

// Name returns the event name this slot is bound to, or "" for the
// zero Slot.
func (s Slot) Name() Key { return s.name }

// Register adds a callback to the slot's event. An unbound slot fails
// with ErrUnknownEvent; see Event.Register for callback requirements.
func (s Slot) Register(fn any) (Listener, error) {
	if s.event == nil {
		return Listener{}, ErrUnknownEvent
	}
	return s.event.Register(fn)
}

// Unregister removes a listener by handle. A no-op on an unbound slot
// or an absent listener.
func (s Slot) Unregister(l Listener) {
	l.Remove()
}

// Clear removes all listeners from the slot's event and returns how
// many were removed. An unbound slot has none.
func (s Slot) Clear() int {
	if s.event == nil {
		return 0
	}
	return s.event.Clear()
}

// Len returns the number of currently registered listeners.
func (s Slot) Len() int {
	if s.event == nil {
		return 0
	}
	return s.event.Len()
}
