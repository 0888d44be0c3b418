package store

import (
	"log"
	"time"
)

// Recorder receives the outcome of every local-store operation,
// success or failure. Implemented by the health monitor.
type Recorder interface {
	Record(operation string, success bool, err error)
}

// SafeRunner executes local-store operations with bounded
// exponential-backoff retries. It never surfaces an error to the
// caller: after exhausting retries the declared fallback is returned,
// and failure signaling flows entirely through the Recorder.
type SafeRunner struct {
	recorder  Recorder
	retries   int
	baseDelay time.Duration
	sleep     func(time.Duration)
}

// NewSafeRunner creates a runner with the given retry budget.
// The k-th retry waits 2^(k-1) * baseDelay.
func NewSafeRunner(recorder Recorder, retries int, baseDelay time.Duration) *SafeRunner {
	if retries < 0 {
		retries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &SafeRunner{
		recorder:  recorder,
		retries:   retries,
		baseDelay: baseDelay,
		sleep:     time.Sleep,
	}
}

// SetSleep overrides the backoff sleep, for tests
func (r *SafeRunner) SetSleep(fn func(time.Duration)) {
	r.sleep = fn
}

func (r *SafeRunner) record(label string, success bool, err error) {
	if r.recorder != nil {
		r.recorder.Record(label, success, err)
	}
}

// RunSafe executes op with retries and returns fallback after
// exhaustion. Every attempt feeds the recorder.
func RunSafe[T any](r *SafeRunner, label string, fallback T, op func() (T, error)) T {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		value, err := op()
		if err == nil {
			r.record(label, true, nil)
			return value
		}

		lastErr = err
		r.record(label, false, err)

		if attempt < r.retries {
			delay := r.baseDelay * time.Duration(1<<uint(attempt)) // 100ms, 200ms, 400ms...
			r.sleep(delay)
		}
	}

	log.Printf("⚠️ Operation %s failed after %d attempts, returning fallback: %v", label, r.retries+1, lastErr)
	return fallback
}

// RunSafeErr is RunSafe for operations with no meaningful value:
// it reports whether the operation eventually succeeded.
func RunSafeErr(r *SafeRunner, label string, op func() error) bool {
	return RunSafe(r, label, false, func() (bool, error) {
		if err := op(); err != nil {
			return false, err
		}
		return true, nil
	})
}
