package reporters

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/logrusorgru/aurora"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/logging"
)

// ConsoleReporter renders run progress for humans on a terminal.
type ConsoleReporter struct {
	au aurora.Aurora
	w  io.Writer

	start time.Time
}

func NewConsole(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		au: aurora.NewAurora(logging.IsTerminal()),
		w:  w,
	}
}

func (c *ConsoleReporter) Error(err error) {
	fmt.Fprintf(c.w, "%s %s\n", c.au.BgRed("ERROR").White(), err)
}

func (c *ConsoleReporter) InitErrors(errs []error) {
	for _, err := range errs {
		fmt.Fprintf(c.w, "%s %s\n", c.au.BgYellow("SKIPPED").Black(), err)
	}
}

func (c *ConsoleReporter) Log(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", c.au.BgWhite("INFO").Black(), msg)
}

func (c *ConsoleReporter) ReportStart(start time.Time) {
	c.start = start
	fmt.Fprintf(c.w, "\n%s\n\n", c.au.Bold("=== REPORT ==="))
}

func (c *ConsoleReporter) TestTrigger(test *api.Test, id string, rule api.ExecutionRule, override *api.ConfigOverride) {
	name := "?"
	if test != nil {
		name = test.Name
	}
	switch rule {
	case api.RuleSkipped:
		fmt.Fprintf(c.w, "%s %s (%s)\n", c.au.BgYellow("SKIPPED").Black(), name, id)
	case api.RuleNonBlocking:
		fmt.Fprintf(c.w, "%s %s (%s) triggered (non-blocking)\n", c.au.BgBrightCyan("START").Black(), name, id)
	default:
		fmt.Fprintf(c.w, "%s %s (%s) triggered\n", c.au.BgBrightCyan("START").Black(), name, id)
	}
}

func (c *ConsoleReporter) TestsWait(tests []*api.Test) {
	fmt.Fprintf(c.w, "Waiting for %s...\n", english.Plural(len(tests), "test result", ""))
}

func (c *ConsoleReporter) ResultEnd(result *api.PollResult, baseURL string) {
	verdict := c.au.BgGreen("OK").White()
	if !api.HasResultPassed(&result.Result, true, true) {
		verdict = c.au.BgRed("FAIL").White()
	}
	fmt.Fprintf(c.w, "%s result %s (%dms)\n", verdict, result.ResultID, api.ResultDuration(&result.Result))
}

func (c *ConsoleReporter) TestEnd(test *api.Test, results []api.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	passed := api.HasTestSucceeded(results, failOnCriticalErrors, failOnTimeout)

	verdict := c.au.BgGreen("PASSED").White()
	if !passed {
		verdict = c.au.BgRed("FAILED").White()
	}
	fmt.Fprintf(c.w, "%s %s (%s)\n", verdict, test.Name, test.PublicID)

	for i := range results {
		r := &results[i]
		location := locationNames[r.DCID]
		if location == "" {
			location = fmt.Sprintf("location %d", r.DCID)
		}
		detail := ""
		switch {
		case r.Result.Error != "":
			detail = " [" + r.Result.Error + "]"
		case r.Result.ErrorCode != "":
			detail = " [" + r.Result.ErrorCode + "]"
		}
		fmt.Fprintf(c.w, "  ⎡ %s: %dms%s\n", location, api.ResultDuration(&r.Result), detail)
		fmt.Fprintf(c.w, "  ⎣ %s\n", resultURL(baseURL, test.PublicID, r.ResultID))
	}
}

func (c *ConsoleReporter) RunEnd(summary *api.Summary, baseURL string) {
	fmt.Fprintf(c.w, "\n%s passed, %s failed",
		c.au.Green(fmt.Sprintf("%d", summary.Passed)),
		c.au.Red(fmt.Sprintf("%d", summary.Failed)))
	if summary.FailedNonBlocking > 0 {
		fmt.Fprintf(c.w, ", %d failed (non-blocking)", summary.FailedNonBlocking)
	}
	if summary.Skipped > 0 {
		fmt.Fprintf(c.w, ", %d skipped", summary.Skipped)
	}
	if summary.TimedOut > 0 {
		fmt.Fprintf(c.w, ", %d timed out", summary.TimedOut)
	}
	if summary.CriticalErrors > 0 {
		fmt.Fprintf(c.w, ", %d critical errors", summary.CriticalErrors)
	}
	if len(summary.TestsNotFound) > 0 {
		fmt.Fprintf(c.w, ", %s not found", english.Plural(len(summary.TestsNotFound), "test", ""))
	}
	fmt.Fprintln(c.w)

	if !c.start.IsZero() {
		fmt.Fprintf(c.w, "Total duration: %s\n", time.Since(c.start).Round(time.Millisecond))
	}
	if summary.BatchID != "" {
		fmt.Fprintf(c.w, "Batch: %s\n", batchURL(baseURL, summary.BatchID))
	}
}

func resultURL(baseURL, publicID, resultID string) string {
	return fmt.Sprintf("%s/synthetics/details/%s?resultId=%s", baseURL, publicID, resultID)
}

func batchURL(baseURL, batchID string) string {
	return fmt.Sprintf("%s/synthetics/explorer/ci?batchResultId=%s", baseURL, batchID)
}
