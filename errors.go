package eventing

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Construction Errors
//
// These errors are returned when an event or emitter cannot be built.

// ErrNilOwner is returned when constructing an event or emitter
// without an owner. Every event is bound to exactly one owner instance.
var ErrNilOwner = errors.New("event owner cannot be nil")

// ErrInvalidSignature is returned when a declared signature contains
// something other than a type descriptor. Signatures describe types,
// never values.
var ErrInvalidSignature = errors.New("event signature elements must be types")

// Declaration Errors
//
// These errors are returned at type-definition time, when declared
// events are reconciled and installed.

// ErrRedefined is returned when Define is called more than once for the
// same producer type. Definitions are immutable once installed.
var ErrRedefined = errors.New("events already defined for type")

// ErrUndeclared is returned when an emitter is constructed for a type
// that declares no events, neither through Define nor through Slot
// fields.
var ErrUndeclared = errors.New("type declares no events")

// ErrAttributeConflict is the sentinel matched by ConflictError: a
// declared event name collides with a non-event member of the owner
// type. Use errors.As to recover the ConflictError for details.
var ErrAttributeConflict = errors.New("event name collides with a non-event member")

// Invocation Errors
//
// These errors are returned when raising an event.

// ErrNotOwner is returned when dispatch is attempted without ownership
// of the event: a zero Raiser, or an emitter that was never bound to an
// owner. Valid Raisers exist only in the hands of the owning instance,
// so external code cannot trigger dispatch at all.
var ErrNotOwner = errors.New("cannot raise an event from outside its owning object")

// ErrUnknownEvent is returned when raising or accessing an event name
// that was never declared on the owner type.
var ErrUnknownEvent = errors.New("event not declared on this type")

// ErrSignatureMismatch is the sentinel matched by SignatureError: the
// raised argument list does not match the declared signature. Use
// errors.As to recover the expected and actual type lists.
var ErrSignatureMismatch = errors.New("event arguments do not match the declared signature")

// Registration Errors
//
// These errors are returned when registering a listener.

// ErrNotCallable is returned when the registration target is nil or not
// a function.
var ErrNotCallable = errors.New("event listener must be a function")

// ErrListenerArity is the sentinel matched by CallbackError: the
// listener's parameter count does not fit the event's signature. A
// listener always takes the owner first, then one parameter per
// signature element.
var ErrListenerArity = errors.New("listener has the wrong number of parameters")

// SignatureError reports a raise whose arguments did not match the
// declared signature, either in count or in per-position type. It
// carries both type lists for diagnostics and unwraps to
// ErrSignatureMismatch.
type SignatureError struct {
	Expected []reflect.Type
	Actual   []reflect.Type
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf(
		"cannot raise event: expected signature %s, but was given %s",
		formatTypes(e.Expected), formatTypes(e.Actual))
}

func (e *SignatureError) Unwrap() error { return ErrSignatureMismatch }

// CallbackError reports a listener registration rejected because the
// function's parameter count does not equal the signature length plus
// one. It unwraps to ErrListenerArity.
type CallbackError struct {
	// Expected is the required parameter count: len(signature)+1.
	// The first parameter always receives the owning instance.
	Expected int

	// Actual is the parameter count the listener declared.
	Actual int

	// Variadic reports whether the listener was rejected for having a
	// variadic parameter list, which has no fixed arity to validate.
	Variadic bool
}

func (e *CallbackError) Error() string {
	if e.Variadic {
		return fmt.Sprintf(
			"listener has a variadic parameter list; expected exactly %d parameters "+
				"(the first parameter receives the owning object)", e.Expected)
	}
	return fmt.Sprintf(
		"listener has %d parameters, expected %d "+
			"(the first parameter receives the owning object)", e.Actual, e.Expected)
}

func (e *CallbackError) Unwrap() error { return ErrListenerArity }

// ConflictError reports a type-definition-time collision between a
// declared event name and a pre-existing non-event member of the owner
// type. It unwraps to ErrAttributeConflict.
type ConflictError struct {
	// Type is the owner type whose definition failed.
	Type reflect.Type

	// Name is the conflicting event name.
	Name Key

	// Kind describes what the existing member actually is, such as
	// "string field" or "method".
	Kind string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"type %s already defines %q, but %q is a %s, not an event",
		e.Type, e.Name, e.Name, e.Kind)
}

func (e *ConflictError) Unwrap() error { return ErrAttributeConflict }

// formatTypes renders a type list as "(string, int)" for diagnostics.
// A nil entry (an untyped nil argument) renders as "nil".
func formatTypes(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "nil"
			continue
		}
		names[i] = t.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
