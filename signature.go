package eventing

import (
	"fmt"
	"reflect"
)

// Signature is the ordered list of argument types an event carries,
// excluding the implicit leading owner argument. A nil or empty
// Signature describes an event raised with no arguments.
type Signature []reflect.Type

// TypeOf returns the type descriptor for T, usable as a signature
// element. Unlike reflect.TypeOf on a value, it works for interface
// types as well:
//
//	eventing.TypeOf[string]()
//	eventing.TypeOf[error]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewSignature builds a normalized Signature from type descriptors.
//
// Normalization follows the declaration rules:
//   - no arguments, or a single nil, yields an empty signature
//   - a single Signature, []reflect.Type, or []any is used as the
//     sequence itself
//   - a single type descriptor yields a one-element signature
//
// Every element must be a reflect.Type; supplying a value instead of a
// type fails with ErrInvalidSignature.
func NewSignature(types ...any) (Signature, error) {
	if len(types) == 0 {
		return Signature{}, nil
	}
	if len(types) == 1 {
		return normalizeSignature(types[0])
	}
	return typesOf(types)
}

// normalizeSignature converts the accepted signature spellings into a
// canonical Signature.
func normalizeSignature(spec any) (Signature, error) {
	switch s := spec.(type) {
	case nil:
		return Signature{}, nil
	case Signature:
		out := make(Signature, len(s))
		copy(out, s)
		return out, nil
	case []reflect.Type:
		out := make(Signature, len(s))
		copy(out, s)
		return out, nil
	case []any:
		return typesOf(s)
	case reflect.Type:
		return Signature{s}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidSignature, spec)
	}
}

func typesOf(elems []any) (Signature, error) {
	sig := make(Signature, len(elems))
	for i, e := range elems {
		t, ok := e.(reflect.Type)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidSignature, i, e)
		}
		sig[i] = t
	}
	return sig, nil
}

// String renders the signature as "(string, int)" for diagnostics.
func (s Signature) String() string {
	return formatTypes(s)
}

// equal reports whether two signatures describe the same type sequence.
func (s Signature) equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i, t := range s {
		if t != other[i] {
			return false
		}
	}
	return true
}

// check validates a raised argument list against the signature: the
// count must match exactly and each argument's runtime type must be
// assignable to the declared type at that position. An untyped nil is
// accepted only where the declared type can hold nil.
func (s Signature) check(args []any) error {
	actual := make([]reflect.Type, len(args))
	for i, a := range args {
		actual[i] = reflect.TypeOf(a)
	}

	if len(args) != len(s) {
		return &SignatureError{Expected: s, Actual: actual}
	}
	for i, want := range s {
		got := actual[i]
		if got == nil {
			if !isNilable(want) {
				return &SignatureError{Expected: s, Actual: actual}
			}
			continue
		}
		if !got.AssignableTo(want) {
			return &SignatureError{Expected: s, Actual: actual}
		}
	}
	return nil
}

// isNilable reports whether a declared type can carry an untyped nil
// argument.
func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map,
		reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
