package eventing

// Listener represents a handle to a registered callback function.
// It provides a way to unregister the callback from its event.
//
// Listener handles are returned by Register and should be stored if you
// need to unregister the callback later. Because Go functions are not
// comparable, removal is always by handle: each registration gets its
// own handle, so registering the same function twice yields two
// independent handles and two invocations per raise.
//
// Thread Safety:
// Listener methods are safe for concurrent use. Removing a listener
// that has already been removed, or was never registered, is a no-op.
//
// Example:
//
//	listener, err := producer.OnDone.Register(onDone)
//	if err != nil {
//	    return err
//	}
//
//	// Later, unregister the callback
//	listener.Remove()
type Listener struct {
	// remove is an internal function that performs the actual
	// unregistration. It is set during registration; the zero Listener
	// has none and Remove does nothing.
	remove func()
}

// Remove unregisters this listener from its event.
//
// Removal is idempotent: calling Remove on an already-removed listener,
// or on the zero Listener, does nothing. A listener may remove itself
// (or any other listener) from within its own invocation; the dispatch
// in progress still completes against its snapshot.
func (l Listener) Remove() {
	if l.remove != nil {
		l.remove()
	}
}
