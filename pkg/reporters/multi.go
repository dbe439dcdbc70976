package reporters

import (
	"time"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/logging"
)

// MultiReporter fans every hook out to its members, in registration order. A
// member that panics is contained so the remaining members still run.
type MultiReporter struct {
	members []Reporter
}

func NewMulti(members ...Reporter) *MultiReporter {
	return &MultiReporter{members: members}
}

// Add appends a member reporter.
func (m *MultiReporter) Add(r Reporter) {
	m.members = append(m.members, r)
}

func dispatch(f func()) {
	defer func() {
		if p := recover(); p != nil {
			logging.S().Errorw("reporter panicked", "panic", p)
		}
	}()
	f()
}

func (m *MultiReporter) Error(err error) {
	for _, r := range m.members {
		if h, ok := r.(ErrorReporter); ok {
			dispatch(func() { h.Error(err) })
		}
	}
}

func (m *MultiReporter) InitErrors(errs []error) {
	for _, r := range m.members {
		if h, ok := r.(InitErrorsReporter); ok {
			dispatch(func() { h.InitErrors(errs) })
		}
	}
}

func (m *MultiReporter) Log(msg string) {
	for _, r := range m.members {
		if h, ok := r.(LogReporter); ok {
			dispatch(func() { h.Log(msg) })
		}
	}
}

func (m *MultiReporter) ReportStart(start time.Time) {
	for _, r := range m.members {
		if h, ok := r.(StartReporter); ok {
			dispatch(func() { h.ReportStart(start) })
		}
	}
}

func (m *MultiReporter) TestTrigger(test *api.Test, id string, rule api.ExecutionRule, override *api.ConfigOverride) {
	for _, r := range m.members {
		if h, ok := r.(TestTriggerReporter); ok {
			dispatch(func() { h.TestTrigger(test, id, rule, override) })
		}
	}
}

func (m *MultiReporter) TestWait(test *api.Test) {
	for _, r := range m.members {
		if h, ok := r.(TestWaitReporter); ok {
			dispatch(func() { h.TestWait(test) })
		}
	}
}

func (m *MultiReporter) TestsWait(tests []*api.Test) {
	for _, r := range m.members {
		if h, ok := r.(TestsWaitReporter); ok {
			dispatch(func() { h.TestsWait(tests) })
		}
	}
}

func (m *MultiReporter) ResultReceived(result *api.PollResult) {
	for _, r := range m.members {
		if h, ok := r.(ResultReceivedReporter); ok {
			dispatch(func() { h.ResultReceived(result) })
		}
	}
}

func (m *MultiReporter) ResultEnd(result *api.PollResult, baseURL string) {
	for _, r := range m.members {
		if h, ok := r.(ResultEndReporter); ok {
			dispatch(func() { h.ResultEnd(result, baseURL) })
		}
	}
}

func (m *MultiReporter) TestEnd(test *api.Test, results []api.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	for _, r := range m.members {
		if h, ok := r.(TestEndReporter); ok {
			dispatch(func() { h.TestEnd(test, results, baseURL, locationNames, failOnCriticalErrors, failOnTimeout) })
		}
	}
}

func (m *MultiReporter) RunEnd(summary *api.Summary, baseURL string) {
	for _, r := range m.members {
		if h, ok := r.(RunEndReporter); ok {
			dispatch(func() { h.RunEnd(summary, baseURL) })
		}
	}
}
