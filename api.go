// Package eventing provides a thread-safe, signature-checked event
// primitive for producer/consumer notification, with ownership-gated
// dispatch and declaration-driven event materialization.
//
// An Event is a named notification channel owned by exactly one producer
// instance. Consumers register callback functions; the owner raises the
// event, and every registered callback is invoked with the owner followed
// by the event's typed arguments.
//
// Three guarantees distinguish this from a plain callback list:
//   - Only the owner can raise: dispatch is reachable solely through a
//     Raiser capability handed out at construction, never through the
//     registry's public surface
//   - Raised arguments are validated against the declared signature
//   - Registration, removal, and dispatch are safe under arbitrary
//     thread interleavings; callbacks run outside the registry lock
//
// Basic Usage:
//
//	type Producer struct {
//		events *eventing.Emitter // private - owner-only raise surface
//		OnDone eventing.Slot     // bound at construction for consumers
//	}
//
//	func NewProducer() (*Producer, error) {
//		p := &Producer{}
//		events, err := eventing.NewEmitter(p)
//		if err != nil {
//			return nil, err
//		}
//		p.events = events
//		return p, nil
//	}
//
//	func (p *Producer) Work() error {
//		// ... do work ...
//		return p.events.Raise("OnDone", "finished")
//	}
//
// Event signatures are declared once per type, typically from an init
// function in the producer's package:
//
//	func init() {
//		eventing.MustDefine[*Producer](
//			eventing.Declare("OnDone", eventing.TypeOf[string]()),
//		)
//	}
//
// Consumers see only the registration surface:
//
//	listener, err := producer.OnDone.Register(func(owner any, msg string) {
//		log.Println("producer finished:", msg)
//	})
//	defer listener.Remove()
//
// Standalone events can also be created directly, without the
// declaration mechanism:
//
//	ev, raise, err := eventing.New(owner, eventing.TypeOf[string]())
//
// The Raiser returned by New is the only path to dispatch; the owner
// stores it privately and external code can never reach it.
//
// Dispatch is synchronous: callbacks run to completion on the raising
// goroutine, in registration order, against a snapshot of the listener
// list taken under lock. A callback may remove itself or any other
// callback during its own invocation without deadlocking, and callbacks
// registered while a raise is in flight are not part of that dispatch.
package eventing

// Key identifies an event by name within a producer type.
// This is a type alias for string that provides semantic meaning and
// encourages the use of package-level constants.
//
// Names that are valid Go identifiers can be bound to Slot fields of the
// same name on the owner struct; dotted names work too but must be
// mapped with an `event:"..."` struct tag on the Slot field.
//
//	const (
//		EventDone     Key = "OnDone"
//		EventProgress Key = "OnProgress"
//	)
type Key = string
