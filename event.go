package eventing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/clockz"
)

// Event is a thread-safe, signature-checked callback registry bound to
// exactly one owner instance.
//
// This struct provides:
//   - Listener registration, removal, and storage
//   - Signature validation of raised arguments
//   - Snapshot dispatch: the listener list is copied under lock and
//     invoked outside it, in registration order
//
// Event deliberately exposes no raise operation. Dispatch is reachable
// only through the Raiser returned at construction, which the owner
// keeps private; external code holding an Event can register and remove
// listeners but can never trigger them.
//
// Thread Safety:
// All methods are safe for concurrent use. Each event carries its own
// lock, so independent events never contend with each other.
type Event struct {
	clock     clockz.Clock // Time abstraction injected at creation
	owner     any
	ownerVal  reflect.Value
	signature Signature
	validate  bool

	mu        sync.Mutex
	listeners []listenerEntry

	// Metrics field - zero initialization provides safe defaults
	metrics Metrics
}

// listenerEntry contains a registered callback and its identity.
type listenerEntry struct {
	id string        // Unique identifier for this registration
	fn reflect.Value // The callback function
}

// Raiser is the dispatch capability for a single event. It is handed
// out exactly once, at construction, to the owning instance; holding a
// Raiser is what it means to own the event.
//
// The zero Raiser is detached and always fails with ErrNotOwner.
type Raiser struct {
	event *Event
}

// New creates an event owned by owner with the given signature.
//
// The signature accepts the normalized spellings described on
// NewSignature: nil, a single reflect.Type, a Signature, or a slice of
// type descriptors. Supplying a value instead of a type fails with
// ErrInvalidSignature; a nil owner fails with ErrNilOwner.
//
// The returned Raiser is the only way to dispatch the event. Store it
// in a private field of the owner and never let it escape:
//
//	type Producer struct {
//		done      *eventing.Event
//		raiseDone eventing.Raiser
//	}
//
//	func NewProducer() (*Producer, error) {
//		p := &Producer{}
//		ev, raise, err := eventing.New(p, eventing.TypeOf[string]())
//		if err != nil {
//			return nil, err
//		}
//		p.done, p.raiseDone = ev, raise
//		return p, nil
//	}
func New(owner any, signature any, opts ...Option) (*Event, Raiser, error) {
	sig, err := normalizeSignature(signature)
	if err != nil {
		return nil, Raiser{}, err
	}
	ev, err := newEvent(owner, sig, currentConfig(opts...))
	if err != nil {
		return nil, Raiser{}, err
	}
	return ev, Raiser{event: ev}, nil
}

// newEvent constructs an event from an already-normalized signature.
func newEvent(owner any, sig Signature, cfg config) (*Event, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	return &Event{
		clock:     cfg.clock,
		owner:     owner,
		ownerVal:  reflect.ValueOf(owner),
		signature: sig,
		validate:  cfg.validate,
	}, nil
}

// Signature returns a copy of the event's declared signature.
func (e *Event) Signature() Signature {
	out := make(Signature, len(e.signature))
	copy(out, e.signature)
	return out
}

// Register adds a callback function to the event.
//
// The callback may be any function whose first parameter receives the
// owning instance, followed by one parameter per signature element:
//
//	listener, err := ev.Register(func(owner any, msg string) {
//	    ...
//	})
//
// With validation enabled (the default), a nil or non-function target
// fails with ErrNotCallable, and a function whose parameter count is
// not len(signature)+1, or that is variadic, fails with CallbackError.
// Parameter types are not checked here; arguments are validated against
// the declared signature on every raise, so a listener whose parameter
// types cannot hold the declared types will panic the raiser when
// invoked.
//
// Duplicate registrations are permitted and produce one invocation
// each. Registrations made while a raise is in flight do not join that
// dispatch.
func (e *Event) Register(fn any) (Listener, error) {
	if fn == nil {
		return Listener{}, ErrNotCallable
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return Listener{}, fmt.Errorf("%w: got %T", ErrNotCallable, fn)
	}

	if e.validate {
		ft := fv.Type()
		want := len(e.signature) + 1
		if ft.IsVariadic() {
			return Listener{}, &CallbackError{Expected: want, Actual: ft.NumIn(), Variadic: true}
		}
		if ft.NumIn() != want {
			return Listener{}, &CallbackError{Expected: want, Actual: ft.NumIn()}
		}
	}

	entry := listenerEntry{
		id: e.generateID(),
		fn: fv,
	}

	e.mu.Lock()
	e.listeners = append(e.listeners, entry)
	e.mu.Unlock()

	return Listener{
		remove: func() {
			e.removeListener(entry.id)
		},
	}, nil
}

// removeListener removes a registration by ID, preserving the order of
// the remaining listeners. Removing an ID that is no longer present is
// a no-op.
func (e *Event) removeListener(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, entry := range e.listeners {
		if entry.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Unregister removes a specific listener using its handle. Removing a
// listener that is not registered is a no-op, never an error.
func (e *Event) Unregister(l Listener) {
	l.Remove()
}

// Clear removes all listeners and returns how many were removed.
func (e *Event) Clear() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := len(e.listeners)
	e.listeners = nil
	return count
}

// Len returns the number of currently registered listeners.
func (e *Event) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Metrics returns current event metrics with thread-safe access.
// RegisteredListeners requires mutex acquisition for consistency with
// Register and removal; counter values are read atomically.
func (e *Event) Metrics() Metrics {
	e.mu.Lock()
	registered := int64(len(e.listeners))
	e.mu.Unlock()

	return Metrics{
		RaisesTotal:         atomic.LoadInt64(&e.metrics.RaisesTotal),
		ListenersInvoked:    atomic.LoadInt64(&e.metrics.ListenersInvoked),
		SignatureFailures:   atomic.LoadInt64(&e.metrics.SignatureFailures),
		RegisteredListeners: registered,
		LastRaise:           atomic.LoadInt64(&e.metrics.LastRaise),
	}
}

// Raise validates args against the event's signature and invokes every
// registered listener, in registration order, as listener(owner, args...).
//
// A zero Raiser fails with ErrNotOwner. With validation enabled, a
// count or per-position type mismatch fails with SignatureError before
// any listener runs.
//
// Dispatch runs on the calling goroutine against a snapshot of the
// listener list taken under lock: a listener may remove itself or any
// other listener during its own invocation, and listeners registered
// concurrently are not part of the in-flight dispatch. A listener panic
// propagates to the raiser and the remaining snapshot entries are not
// invoked.
func (r Raiser) Raise(args ...any) error {
	if r.event == nil {
		return ErrNotOwner
	}
	return r.event.raise(args)
}

// raise implements dispatch. Only reachable through a Raiser.
func (e *Event) raise(args []any) error {
	if e.validate {
		if err := e.signature.check(args); err != nil {
			atomic.AddInt64(&e.metrics.SignatureFailures, 1)
			return err
		}
	}

	// Copy the listener slice under lock, then invoke outside it so a
	// listener can unregister during its own invocation.
	e.mu.Lock()
	snapshot := make([]listenerEntry, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	atomic.AddInt64(&e.metrics.RaisesTotal, 1)
	atomic.StoreInt64(&e.metrics.LastRaise, e.clock.Now().UnixNano())

	for _, entry := range snapshot {
		e.invoke(entry, args)
		atomic.AddInt64(&e.metrics.ListenersInvoked, 1)
	}
	return nil
}

// invoke calls a single listener as fn(owner, args...). Untyped nil
// arguments become the zero value of the listener's parameter type;
// everything else is passed through, with reflect.Call handling the
// assignability conversions.
func (e *Event) invoke(entry listenerEntry, args []any) {
	ft := entry.fn.Type()

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, e.ownerVal)
	for i, a := range args {
		av := reflect.ValueOf(a)
		if !av.IsValid() {
			av = reflect.Zero(ft.In(i + 1))
		}
		in = append(in, av)
	}

	entry.fn.Call(in)
}

// generateID creates a cryptographically random unique identifier for
// listener registrations.
//
// Uses crypto/rand so registration IDs cannot be predicted or forged.
func (e *Event) generateID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID if random fails
		// This should never happen in practice with crypto/rand
		return fmt.Sprintf("%d", e.clock.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
