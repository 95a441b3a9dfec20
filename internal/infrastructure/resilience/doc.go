/*
Package resilience provides a circuit breaker.

The breaker wraps the sandbox evaluator so that a pool that keeps timing
out stops accepting work for a while instead of queueing every request
behind it.

	breaker := resilience.New("sandbox", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	result, err := resilience.Run(breaker, func() (*sandbox.Result, error) {
		return pool.Evaluate(ctx, snippet, page)
	})

States:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                            |
	                                        [failure]
	                                            v
	                                           Open
*/
package resilience
