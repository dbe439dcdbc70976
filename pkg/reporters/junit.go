package reporters

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/logging"
)

// JUnitReporter accumulates per-test outcomes and writes a JUnit XML report
// when the run ends, for CI systems that ingest that format.
type JUnitReporter struct {
	Path string

	suites []junitSuite
}

type junitReport struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Time     float64     `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	Time    float64       `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

func NewJUnit(path string) *JUnitReporter {
	return &JUnitReporter{Path: path}
}

func (j *JUnitReporter) TestEnd(test *api.Test, results []api.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	suite := junitSuite{Name: fmt.Sprintf("%s (%s)", test.Name, test.PublicID)}

	for i := range results {
		r := &results[i]
		duration := float64(api.ResultDuration(&r.Result)) / 1000

		c := junitCase{
			Name: fmt.Sprintf("result %s", r.ResultID),
			Time: duration,
		}
		if !api.HasResultPassed(&r.Result, failOnCriticalErrors, failOnTimeout) {
			msg := r.Result.Error
			if msg == "" {
				msg = r.Result.ErrorCode
			}
			c.Failure = &junitFailure{
				Message: msg,
				Body:    resultURL(baseURL, test.PublicID, r.ResultID),
			}
			suite.Failures++
		}
		suite.Tests++
		suite.Time += duration
		suite.Cases = append(suite.Cases, c)
	}

	j.suites = append(j.suites, suite)
}

func (j *JUnitReporter) RunEnd(summary *api.Summary, baseURL string) {
	report := junitReport{Suites: j.suites}

	raw, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		logging.S().Errorw("failed to encode junit report", "error", err)
		return
	}
	raw = append([]byte(xml.Header), raw...)

	if err := os.WriteFile(j.Path, raw, 0o644); err != nil {
		logging.S().Errorw("failed to write junit report", "path", j.Path, "error", err)
	}
}
