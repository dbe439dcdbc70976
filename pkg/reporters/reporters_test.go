package reporters

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/synthwatch/synthwatch/pkg/api"
)

type hookRecorder struct {
	calls []string
}

func (h *hookRecorder) Error(err error)                       { h.calls = append(h.calls, "error") }
func (h *hookRecorder) Log(msg string)                        { h.calls = append(h.calls, "log:"+msg) }
func (h *hookRecorder) RunEnd(s *api.Summary, baseURL string) { h.calls = append(h.calls, "runEnd") }
func (h *hookRecorder) ResultReceived(r *api.PollResult)      { h.calls = append(h.calls, "resultReceived") }

type logOnly struct {
	logs []string
}

func (l *logOnly) Log(msg string) { l.logs = append(l.logs, msg) }

type panicky struct{}

func (p *panicky) Log(msg string) { panic("misbehaving reporter") }

func TestMultiDispatchesOnlyImplementedHooks(t *testing.T) {
	full := &hookRecorder{}
	partial := &logOnly{}
	m := NewMulti(full, partial)

	m.Log("hello")
	m.Error(errors.New("x"))
	m.ReportStart(time.Now()) // nobody implements this; must be a no-op
	m.RunEnd(api.NewSummary(), "https://app.example.org")

	require.Equal(t, []string{"log:hello", "error", "runEnd"}, full.calls)
	require.Equal(t, []string{"hello"}, partial.logs)
}

func TestMultiDeliversInRegistrationOrder(t *testing.T) {
	order := []string{}
	a := &orderedReporter{name: "a", order: &order}
	b := &orderedReporter{name: "b", order: &order}

	m := NewMulti(a, b)
	m.Log("x")
	require.Equal(t, []string{"a", "b"}, order)
}

type orderedReporter struct {
	name  string
	order *[]string
}

func (o *orderedReporter) Log(msg string) { *o.order = append(*o.order, o.name) }

func TestMultiIsolatesPanickingMembers(t *testing.T) {
	after := &logOnly{}
	m := NewMulti(&panicky{}, after)

	require.NotPanics(t, func() { m.Log("still delivered") })
	require.Equal(t, []string{"still delivered"}, after.logs)
}

func TestConsoleReporterRendersRun(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	test := &api.Test{PublicID: "abc-def-ghi", Name: "checkout flow", Type: api.TypeBrowser}
	passed := false
	results := []api.PollResult{{
		ResultID: "r1",
		DCID:     7,
		Result:   api.Result{EventType: api.EventTypeFinished, Passed: &passed, ErrorCode: "ASSERT"},
	}}

	c.ReportStart(time.Now())
	c.TestTrigger(test, test.PublicID, api.RuleBlocking, nil)
	c.TestsWait([]*api.Test{test})
	c.TestEnd(test, results, "https://app.example.org", map[int]string{7: "Frankfurt"}, false, false)

	summary := api.NewSummary()
	summary.Failed = 1
	summary.BatchID = "b-1"
	c.RunEnd(summary, "https://app.example.org")

	out := buf.String()
	require.Contains(t, out, "checkout flow")
	require.Contains(t, out, "FAILED")
	require.Contains(t, out, "Frankfurt")
	require.Contains(t, out, "ASSERT")
	require.Contains(t, out, "https://app.example.org/synthetics/details/abc-def-ghi?resultId=r1")
	require.Contains(t, out, "batchResultId=b-1")
}

func TestJUnitReporterWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")
	j := NewJUnit(path)

	test := &api.Test{PublicID: "abc-def-ghi", Name: "api health"}
	passed := true
	failedVerdict := false
	duration := 1500.0

	j.TestEnd(test, []api.PollResult{
		{ResultID: "r1", Result: api.Result{Passed: &passed, Duration: &duration}},
		{ResultID: "r2", Result: api.Result{Passed: &failedVerdict, ErrorCode: "ASSERT"}},
	}, "https://app.example.org", nil, false, false)
	j.RunEnd(api.NewSummary(), "https://app.example.org")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var report junitReport
	require.NoError(t, xml.Unmarshal(raw, &report))
	require.Len(t, report.Suites, 1)
	require.Equal(t, 2, report.Suites[0].Tests)
	require.Equal(t, 1, report.Suites[0].Failures)
	require.Len(t, report.Suites[0].Cases, 2)
	require.NotNil(t, report.Suites[0].Cases[1].Failure)
	require.Equal(t, "ASSERT", report.Suites[0].Cases[1].Failure.Message)
}
