package store

import (
	"errors"
	"testing"
	"time"
)

type recordedOp struct {
	label   string
	success bool
}

type fakeRecorder struct {
	ops []recordedOp
}

func (r *fakeRecorder) Record(operation string, success bool, err error) {
	r.ops = append(r.ops, recordedOp{label: operation, success: success})
}

func TestRunSafeSuccessFirstAttempt(t *testing.T) {
	recorder := &fakeRecorder{}
	runner := NewSafeRunner(recorder, 2, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})

	calls := 0
	got := RunSafe(runner, "op", "fallback", func() (string, error) {
		calls++
		return "value", nil
	})

	if got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(recorder.ops) != 1 || !recorder.ops[0].success {
		t.Errorf("expected one successful record, got %+v", recorder.ops)
	}
}

func TestRunSafeFallbackAfterExhaustion(t *testing.T) {
	recorder := &fakeRecorder{}
	runner := NewSafeRunner(recorder, 2, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})

	calls := 0
	got := RunSafe(runner, "op", -1, func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	if got != -1 {
		t.Errorf("expected fallback -1, got %d", got)
	}
	if calls != 3 {
		t.Errorf("expected retries+1 = 3 attempts, got %d", calls)
	}
	if len(recorder.ops) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recorder.ops))
	}
	for i, op := range recorder.ops {
		if op.success {
			t.Errorf("record %d should be a failure", i)
		}
	}
}

func TestRunSafeRecoversOnRetry(t *testing.T) {
	recorder := &fakeRecorder{}
	runner := NewSafeRunner(recorder, 2, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})

	calls := 0
	got := RunSafe(runner, "op", "", func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "recovered", nil
	})

	if got != "recovered" {
		t.Errorf("expected recovered, got %q", got)
	}
	if len(recorder.ops) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recorder.ops))
	}
	if recorder.ops[0].success || !recorder.ops[1].success {
		t.Errorf("expected failure then success, got %+v", recorder.ops)
	}
}

func TestRunSafeBackoffDoubles(t *testing.T) {
	runner := NewSafeRunner(nil, 3, 100*time.Millisecond)

	var delays []time.Duration
	runner.SetSleep(func(d time.Duration) {
		delays = append(delays, d)
	})

	RunSafe(runner, "op", 0, func() (int, error) {
		return 0, errors.New("always")
	})

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("sleep %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestRunSafeErr(t *testing.T) {
	runner := NewSafeRunner(nil, 1, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})

	if !RunSafeErr(runner, "ok", func() error { return nil }) {
		t.Error("expected success")
	}
	if RunSafeErr(runner, "fail", func() error { return errors.New("boom") }) {
		t.Error("expected failure")
	}
}

func TestRunSafeZeroRetries(t *testing.T) {
	runner := NewSafeRunner(nil, 0, time.Millisecond)

	slept := false
	runner.SetSleep(func(time.Duration) { slept = true })

	calls := 0
	RunSafe(runner, "op", 0, func() (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
	if slept {
		t.Error("no sleep expected with zero retries")
	}
}
