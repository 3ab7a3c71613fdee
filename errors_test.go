package eventing

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureErrorMessage(t *testing.T) {
	err := &SignatureError{
		Expected: []reflect.Type{TypeOf[string]()},
		Actual:   []reflect.Type{TypeOf[string](), TypeOf[string]()},
	}

	assert.Equal(t,
		"cannot raise event: expected signature (string), but was given (string, string)",
		err.Error())
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestSignatureErrorRendersNilArgument(t *testing.T) {
	err := &SignatureError{
		Expected: []reflect.Type{TypeOf[string]()},
		Actual:   []reflect.Type{nil},
	}
	assert.Contains(t, err.Error(), "(nil)")
}

func TestCallbackErrorMessage(t *testing.T) {
	err := &CallbackError{Expected: 2, Actual: 3}
	assert.Contains(t, err.Error(), "3 parameters, expected 2")
	assert.Contains(t, err.Error(), "owning object")
	assert.ErrorIs(t, err, ErrListenerArity)

	variadic := &CallbackError{Expected: 2, Actual: 2, Variadic: true}
	assert.Contains(t, variadic.Error(), "variadic")
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{
		Type: reflect.TypeOf(testOwner{}),
		Name: "OnX",
		Kind: "string field",
	}
	assert.Contains(t, err.Error(), `"OnX"`)
	assert.Contains(t, err.Error(), "string field, not an event")
	assert.ErrorIs(t, err, ErrAttributeConflict)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNilOwner,
		ErrInvalidSignature,
		ErrRedefined,
		ErrUndeclared,
		ErrAttributeConflict,
		ErrNotOwner,
		ErrUnknownEvent,
		ErrSignatureMismatch,
		ErrNotCallable,
		ErrListenerArity,
	}
	for i, a := range sentinels {
		require.NotEmpty(t, a.Error())
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrorWrappingSurvivesFmt(t *testing.T) {
	producer := newWorkProducer(t)

	err := producer.events.Raise("OnMissing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, _, err = New(&testOwner{}, "not a type")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
