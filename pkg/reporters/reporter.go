// Package reporters streams the lifecycle of a trigger-and-wait run to any
// number of consumers. A reporter is described by the hooks it implements:
// each hook is its own interface, and a reporter opts into a capability by
// implementing the corresponding method. Hooks a reporter does not implement
// are silently skipped.
package reporters

import (
	"time"

	"github.com/synthwatch/synthwatch/pkg/api"
)

// Reporter marks a type as a reporter. Implement any subset of the hook
// interfaces below.
type Reporter interface{}

// ErrorReporter receives non-fatal errors raised during the run.
type ErrorReporter interface {
	Error(err error)
}

// InitErrorsReporter receives the accumulated test-lookup failures once all
// lookups have settled.
type InitErrorsReporter interface {
	InitErrors(errs []error)
}

// LogReporter receives informational messages.
type LogReporter interface {
	Log(msg string)
}

// StartReporter is notified when the run begins.
type StartReporter interface {
	ReportStart(start time.Time)
}

// TestTriggerReporter is notified for every resolved test, with its resolved
// execution rule and the override that was applied. Skipped tests are
// reported too, although they are not submitted.
type TestTriggerReporter interface {
	TestTrigger(test *api.Test, id string, rule api.ExecutionRule, override *api.ConfigOverride)
}

// TestWaitReporter is notified when the engine starts waiting on one test.
type TestWaitReporter interface {
	TestWait(test *api.Test)
}

// TestsWaitReporter is notified with the full set of tests being waited on.
type TestsWaitReporter interface {
	TestsWait(tests []*api.Test)
}

// ResultReceivedReporter is notified for every terminal result as it arrives.
type ResultReceivedReporter interface {
	ResultReceived(result *api.PollResult)
}

// ResultEndReporter is notified when a result has been classified.
type ResultEndReporter interface {
	ResultEnd(result *api.PollResult, baseURL string)
}

// TestEndReporter is notified when all of a test's results are in.
type TestEndReporter interface {
	TestEnd(test *api.Test, results []api.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool)
}

// RunEndReporter is notified once, with the final summary.
type RunEndReporter interface {
	RunEnd(summary *api.Summary, baseURL string)
}
