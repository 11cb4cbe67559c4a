package hc05

import (
	"errors"
	"testing"
)

func TestRunSucceedsFirstAttempt(t *testing.T) {
	policy := Policy{MaxAttempts: 3}

	calls := 0
	result := policy.Run("probe", func() error {
		calls++
		return nil
	})

	if result.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s, want success", result.Outcome)
	}
	if calls != 1 || result.Attempts != 1 {
		t.Errorf("calls = %d, attempts = %d, want 1/1", calls, result.Attempts)
	}
}

func TestRunExhaustsThenSkips(t *testing.T) {
	stepErr := &ProtocolError{Kind: ProtocolTimeout, Command: "AT"}

	var prompted []StepContext
	policy := Policy{
		MaxAttempts: 3,
		Resolver: ResolverFunc(func(ctx StepContext) Resolution {
			prompted = append(prompted, ctx)
			return ResolutionSkip
		}),
	}

	calls := 0
	result := policy.Run("query pin", func() error {
		calls++
		return stepErr
	})

	// Exactly 3 attempts before the operator is asked.
	if calls != 3 {
		t.Errorf("step ran %d times before prompt, want 3", calls)
	}
	if len(prompted) != 1 {
		t.Fatalf("resolver consulted %d times, want 1", len(prompted))
	}
	if prompted[0].Step != "query pin" || prompted[0].Attempts != 3 || !errors.Is(prompted[0].LastErr, stepErr) {
		t.Errorf("prompt context = %+v", prompted[0])
	}

	if result.Outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped - never success, never silent failure", result.Outcome)
	}
	if !errors.Is(result.Err, stepErr) {
		t.Errorf("skipped result lost its error: %v", result.Err)
	}
}

func TestRunRetryResetsCounter(t *testing.T) {
	resolutions := []Resolution{ResolutionRetry, ResolutionSkip}
	policy := Policy{
		MaxAttempts: 3,
		Resolver: ResolverFunc(func(StepContext) Resolution {
			r := resolutions[0]
			resolutions = resolutions[1:]
			return r
		}),
	}

	calls := 0
	result := policy.Run("set role", func() error {
		calls++
		return &ProtocolError{Kind: ProtocolTimeout, Command: "AT+ROLE=1"}
	})

	// One full round, operator retries, another full round, operator skips.
	if calls != 6 {
		t.Errorf("step ran %d times, want 6", calls)
	}
	if result.Outcome != OutcomeSkipped || result.Attempts != 6 {
		t.Errorf("result = %s after %d attempts, want skipped after 6", result.Outcome, result.Attempts)
	}
}

func TestRunRetryThenSuccess(t *testing.T) {
	policy := Policy{
		MaxAttempts: 2,
		Resolver:    ResolverFunc(func(StepContext) Resolution { return ResolutionRetry }),
	}

	calls := 0
	result := policy.Run("probe", func() error {
		calls++
		if calls < 3 {
			return &ProtocolError{Kind: ProtocolTimeout, Command: "AT"}
		}
		return nil
	})

	if result.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s, want success", result.Outcome)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts)
	}
}

func TestRunNoResolverFails(t *testing.T) {
	policy := Policy{MaxAttempts: 3}

	calls := 0
	result := policy.Run("probe", func() error {
		calls++
		return ErrProbeExhausted
	})

	if result.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", result.Outcome)
	}
	if calls != 3 {
		t.Errorf("step ran %d times, want 3", calls)
	}
	if !errors.Is(result.Err, ErrProbeExhausted) {
		t.Errorf("failed result lost its error: %v", result.Err)
	}
}

func TestRunValidationErrorShortCircuits(t *testing.T) {
	policy := Policy{
		MaxAttempts: 3,
		Resolver: ResolverFunc(func(StepContext) Resolution {
			t.Fatal("resolver must not be consulted for validation errors")
			return ResolutionSkip
		}),
	}

	calls := 0
	result := policy.Run("set pin", func() error {
		calls++
		return &ValidationError{Field: FieldPin, Value: "abc", Reason: "must be exactly 4 digits"}
	})

	if calls != 1 {
		t.Errorf("validation error was retried: %d calls", calls)
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed (surfaced immediately)", result.Outcome)
	}
	var verr *ValidationError
	if !errors.As(result.Err, &verr) {
		t.Errorf("result error = %v, want *ValidationError", result.Err)
	}
}

func TestRunDefaultAttempts(t *testing.T) {
	calls := 0
	result := Policy{}.Run("probe", func() error {
		calls++
		return ErrProbeExhausted
	})

	if calls != DefaultMaxAttempts {
		t.Errorf("zero-valued policy ran %d attempts, want %d", calls, DefaultMaxAttempts)
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", result.Outcome)
	}
}
