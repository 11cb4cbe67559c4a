package hc05

import "errors"

// Resolution is the operator's answer after a step has exhausted its attempts.
type Resolution int

const (
	// ResolutionRetry resets the attempt counter and runs the step again.
	ResolutionRetry Resolution = iota
	// ResolutionSkip records the step as skipped and moves on. A skipped
	// query leaves its field absent; a skipped set leaves the module
	// unchanged and the local model is not updated.
	ResolutionSkip
)

// StepContext describes an exhausted step to whatever asks the operator for a
// resolution. The core has no opinion about how the question is presented.
type StepContext struct {
	Step     string
	Attempts int
	LastErr  error
}

// Resolver decides between retry and skip once a step's attempts run out.
type Resolver interface {
	Resolve(StepContext) Resolution
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(StepContext) Resolution

func (f ResolverFunc) Resolve(ctx StepContext) Resolution {
	return f(ctx)
}

// Outcome is the recorded result of one governed step. Every step ends in
// exactly one of these; nothing is silently swallowed.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult records how a governed step concluded. Attempts counts every
// execution of the step function across resolver-driven retries. Err holds
// the last error for Skipped and Failed outcomes.
type StepResult struct {
	Step     string
	Outcome  Outcome
	Attempts int
	Err      error
}

// DefaultMaxAttempts bounds a step's retries before the operator is asked.
const DefaultMaxAttempts = 3

// Policy wraps a single protocol step with bounded retry. Each attempt re-runs
// the step from scratch; steps that own a channel re-open it themselves.
type Policy struct {
	// MaxAttempts per resolver round. Zero or negative means
	// DefaultMaxAttempts.
	MaxAttempts int

	// Resolver is consulted after each exhausted round. A nil resolver
	// turns exhaustion directly into OutcomeFailed.
	Resolver Resolver
}

// Run executes fn until it succeeds, the operator skips, or attempts are
// exhausted with no resolver. A ValidationError is returned immediately
// without retrying: it is operator input error, not device failure, and
// retrying the same value cannot help.
func (p Policy) Run(step string, fn func() error) StepResult {
	max := p.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}

	attempts := 0
	for {
		var lastErr error
		for i := 0; i < max; i++ {
			attempts++
			err := fn()
			if err == nil {
				return StepResult{Step: step, Outcome: OutcomeSuccess, Attempts: attempts}
			}
			var verr *ValidationError
			if errors.As(err, &verr) {
				return StepResult{Step: step, Outcome: OutcomeFailed, Attempts: attempts, Err: err}
			}
			lastErr = err
		}

		if p.Resolver == nil {
			return StepResult{Step: step, Outcome: OutcomeFailed, Attempts: attempts, Err: lastErr}
		}

		switch p.Resolver.Resolve(StepContext{Step: step, Attempts: attempts, LastErr: lastErr}) {
		case ResolutionRetry:
			// Counter resets; loop again.
		case ResolutionSkip:
			return StepResult{Step: step, Outcome: OutcomeSkipped, Attempts: attempts, Err: lastErr}
		}
	}
}
