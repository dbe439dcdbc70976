package api

import "math"

// HasResultPassed decides whether one poll result counts as passed under the
// active policy flags. Critical errors (an unhealthy probe, or a synthesised
// ENDPOINT result) pass unless failOnCriticalErrors is set; a synthesised
// TIMEOUT passes unless failOnTimeout is set. A result carrying no explicit
// verdict at all is treated as successful.
func HasResultPassed(r *Result, failOnCriticalErrors, failOnTimeout bool) bool {
	critical := (r.Unhealthy != nil && *r.Unhealthy) || r.Error == ErrEndpoint
	if critical && !failOnCriticalErrors {
		return true
	}
	if r.Error == ErrTimeout && !failOnTimeout {
		return true
	}
	if r.Passed != nil {
		return *r.Passed
	}
	if r.ErrorCode != "" {
		return false
	}
	return true
}

// HasTestSucceeded is the conjunction of HasResultPassed over all of a test's
// poll results.
func HasTestSucceeded(results []PollResult, failOnCriticalErrors, failOnTimeout bool) bool {
	for i := range results {
		if !HasResultPassed(&results[i].Result, failOnCriticalErrors, failOnTimeout) {
			return false
		}
	}
	return true
}

// ResultDuration extracts a result's duration in milliseconds, preferring the
// explicit duration over the timing breakdown.
func ResultDuration(r *Result) int64 {
	if r.Duration != nil {
		return int64(math.Round(*r.Duration))
	}
	if r.Timings != nil {
		return int64(math.Round(r.Timings.Total))
	}
	return 0
}
