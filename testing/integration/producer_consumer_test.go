package integration

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	eventing "github.com/zags4life/eventing-subsystem"
)

// Event keys for the worker scenario
const (
	workStarted  eventing.Key = "OnStarted"
	workProgress eventing.Key = "OnProgress"
	workDone     eventing.Key = "OnDone"
)

// Worker is a producer exercising the full declaration surface from
// outside the eventing package: Slot fields for consumers, a private
// emitter for raising.
type Worker struct {
	events *eventing.Emitter

	OnStarted  eventing.Slot
	OnProgress eventing.Slot
	OnDone     eventing.Slot
}

func init() {
	eventing.MustDefine[*Worker](
		eventing.Declare(workStarted),
		eventing.Declare(workProgress, eventing.TypeOf[int]()),
		eventing.Declare(workDone, eventing.TypeOf[string]()),
	)
}

func NewWorker() (*Worker, error) {
	w := &Worker{}
	events, err := eventing.NewEmitter(w)
	if err != nil {
		return nil, err
	}
	w.events = events
	return w, nil
}

// Run performs the work and raises events along the way. Only Worker's
// own methods can reach the emitter; consumers hold just the slots.
func (w *Worker) Run(steps int) error {
	if err := w.events.Raise(workStarted); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		if err := w.events.Raise(workProgress, i); err != nil {
			return err
		}
	}
	return w.events.Raise(workDone, fmt.Sprintf("completed %d steps", steps))
}

func TestWorkerLifecycleEvents(t *testing.T) {
	worker, err := NewWorker()
	if err != nil {
		t.Fatalf("Failed to create worker: %v", err)
	}

	var started bool
	var progress []int
	var done string

	l1, err := worker.OnStarted.Register(func(owner any) { started = true })
	if err != nil {
		t.Fatalf("Failed to register OnStarted: %v", err)
	}
	defer l1.Remove()

	l2, err := worker.OnProgress.Register(func(owner any, step int) {
		progress = append(progress, step)
	})
	if err != nil {
		t.Fatalf("Failed to register OnProgress: %v", err)
	}
	defer l2.Remove()

	l3, err := worker.OnDone.Register(func(owner any, msg string) { done = msg })
	if err != nil {
		t.Fatalf("Failed to register OnDone: %v", err)
	}
	defer l3.Remove()

	if err := worker.Run(3); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !started {
		t.Error("OnStarted was not raised")
	}
	if len(progress) != 3 || progress[0] != 1 || progress[2] != 3 {
		t.Errorf("Expected progress [1 2 3], got %v", progress)
	}
	if done != "completed 3 steps" {
		t.Errorf("Unexpected completion message: %q", done)
	}
}

func TestOwnershipIsStructural(t *testing.T) {
	// From outside the owning type there is no raise surface at all:
	// slots and events expose registration only, and the emitter is a
	// private field of Worker. The closest an outsider can get is a
	// zero Raiser, which always fails.
	var stolen eventing.Raiser
	if err := stolen.Raise("forged"); !errors.Is(err, eventing.ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
}

func TestListenerHandleAcrossPackages(t *testing.T) {
	worker, err := NewWorker()
	if err != nil {
		t.Fatalf("Failed to create worker: %v", err)
	}

	calls := 0
	listener, err := worker.OnDone.Register(func(owner any, msg string) { calls++ })
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if err := worker.Run(1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	listener.Remove()
	if err := worker.Run(1); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected 1 invocation before removal, got %d", calls)
	}
}

func TestConcurrentConsumers(t *testing.T) {
	worker, err := NewWorker()
	if err != nil {
		t.Fatalf("Failed to create worker: %v", err)
	}

	var invoked int64
	var wg sync.WaitGroup
	listeners := make(chan eventing.Listener, 64)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				l, err := worker.OnProgress.Register(func(owner any, step int) {
					atomic.AddInt64(&invoked, 1)
				})
				if err != nil {
					t.Errorf("Register failed: %v", err)
					return
				}
				listeners <- l
			}
		}()
	}
	wg.Wait()
	close(listeners)

	if err := worker.events.Raise(workProgress, 1); err != nil {
		// events is accessible here only because the test shares the
		// integration package with Worker.
		t.Fatalf("Raise failed: %v", err)
	}
	if got := atomic.LoadInt64(&invoked); got != 64 {
		t.Errorf("Expected 64 invocations, got %d", got)
	}

	for l := range listeners {
		l.Remove()
	}
	if got := worker.OnProgress.Len(); got != 0 {
		t.Errorf("Expected 0 listeners after cleanup, got %d", got)
	}
}

func TestSignatureEnforcedAcrossPackages(t *testing.T) {
	worker, err := NewWorker()
	if err != nil {
		t.Fatalf("Failed to create worker: %v", err)
	}

	// Listener arity is validated against the declared signature.
	_, err = worker.OnProgress.Register(func(owner any) {})
	if !errors.Is(err, eventing.ErrListenerArity) {
		t.Errorf("Expected ErrListenerArity, got %v", err)
	}

	// Raising with a mismatched argument fails with diagnostics.
	err = worker.events.Raise(workProgress, "not an int")
	if !errors.Is(err, eventing.ErrSignatureMismatch) {
		t.Errorf("Expected ErrSignatureMismatch, got %v", err)
	}
	var sigErr *eventing.SignatureError
	if !errors.As(err, &sigErr) {
		t.Fatalf("Expected *SignatureError, got %T", err)
	}
	if len(sigErr.Expected) != 1 || len(sigErr.Actual) != 1 {
		t.Errorf("Unexpected type lists: %v vs %v", sigErr.Expected, sigErr.Actual)
	}
}
