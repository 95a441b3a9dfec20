package gate

import (
	"context"
	"errors"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/evalguard/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
)

// BreakerEvaluator trips when the sandbox itself is failing: the pool is
// exhausted or runs keep hitting the interrupt. Exceptions thrown by the
// snippet pass through without counting.
type BreakerEvaluator struct {
	next    Evaluator
	breaker *resilience.Breaker
}

// NewBreakerEvaluator wraps next with breaker
func NewBreakerEvaluator(next Evaluator, breaker *resilience.Breaker) *BreakerEvaluator {
	return &BreakerEvaluator{next: next, breaker: breaker}
}

// Evaluate implements Evaluator
func (e *BreakerEvaluator) Evaluate(ctx context.Context, snippet string, page *sandbox.Page) (*sandbox.Result, error) {
	var scriptErr error
	result, err := resilience.Run(e.breaker, func() (*sandbox.Result, error) {
		result, err := e.next.Evaluate(ctx, snippet, page)
		if err != nil && !isSandboxFailure(ctx, err) {
			scriptErr = err
			return result, nil
		}
		return result, err
	})
	if err != nil {
		return result, err
	}
	return result, scriptErr
}

// State reports the breaker state
func (e *BreakerEvaluator) State() resilience.State {
	return e.breaker.State()
}

// Interrupts caused by the caller going away are not the sandbox's fault
func isSandboxFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var interrupted *goja.InterruptedError
	return errors.Is(err, sandbox.ErrAcquireTimeout) || errors.As(err, &interrupted)
}
