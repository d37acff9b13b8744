// Package retry runs an operation again after a fixed delay until its result
// is accepted or the retry budget is spent.
package retry

import "time"

// Policy bounds a retry loop. Retries is the number of extra attempts after
// the first one, so Retries=2 allows up to three attempts in total.
type Policy struct {
	Retries int
	Delay   time.Duration

	// Sleep waits between attempts. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// OnRetry is called with the index of a failed attempt right before
	// sleeping. It is not called after the last attempt.
	OnRetry func(attempt int)
}

// Do calls op with 0-based attempt indices until accept returns true or the
// budget is exhausted. It returns the last result and the index of the
// attempt that produced it. An exhausted budget is not an error: the caller
// gets the last rejected result and decides what to do with it.
func Do[T any](p Policy, op func(attempt int) T, accept func(T) bool) (T, int) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	attempt := 0
	for {
		result := op(attempt)
		if accept(result) || attempt >= p.Retries {
			return result, attempt
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt)
		}
		sleep(p.Delay)
		attempt++
	}
}
