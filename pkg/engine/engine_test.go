package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/config"
	"github.com/synthwatch/synthwatch/pkg/reporters"
)

func TestRunEndToEnd(t *testing.T) {
	backend := &fakeBackend{
		tests: map[string]*api.Test{
			"aaa-aaa-aaa": browserTest("aaa-aaa-aaa", ""),
			"bbb-bbb-bbb": browserTest("bbb-bbb-bbb", api.RuleNonBlocking),
		},
		triggerResponse: triggerFor(
			api.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1", Location: 1},
			api.TriggerResponse{PublicID: "bbb-bbb-bbb", ResultID: "r2", Location: 1},
		),
		pollQueue: []pollStep{
			{results: []api.PollResult{finished("r1", true, "")}},
			{results: []api.PollResult{finished("r2", false, "ASSERT")}},
		},
	}
	cfg := &config.Config{
		PollingTimeout: 60000,
		PublicIDs:      []string{"aaa-aaa-aaa", "bbb-bbb-bbb"},
		WebURL:         "https://app.example.org",
	}
	e, _ := newTestEngine(backend, cfg, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "batch-1", summary.BatchID)
	require.Equal(t, 1, summary.Passed)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 1, summary.FailedNonBlocking, "a failing non-blocking test doesn't fail the run")
	require.Equal(t, 0, summary.TimedOut)
	require.Empty(t, summary.TestsNotFound)
}

func TestRunNormalizesIdentifiers(t *testing.T) {
	backend := &fakeBackend{
		tests: map[string]*api.Test{
			"abc-def-ghi": browserTest("abc-def-ghi", ""),
		},
		triggerResponse: triggerFor(api.TriggerResponse{PublicID: "abc-def-ghi", ResultID: "r1"}),
		pollQueue:       []pollStep{{results: []api.PollResult{finished("r1", true, "")}}},
	}
	cfg := &config.Config{
		PollingTimeout: 60000,
		PublicIDs:      []string{"https://app.example.org/synthetics/details/abc-def-ghi"},
	}
	e, _ := newTestEngine(backend, cfg, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Passed)
}

func TestRunAppliesGlobalOverrides(t *testing.T) {
	backend := &fakeBackend{
		tests: map[string]*api.Test{
			"aaa-aaa-aaa": browserTest("aaa-aaa-aaa", ""),
		},
		triggerResponse: triggerFor(api.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1"}),
		pollQueue:       []pollStep{{results: []api.PollResult{finished("r1", true, "")}}},
	}
	cfg := &config.Config{
		PollingTimeout: 60000,
		PublicIDs:      []string{"aaa-aaa-aaa"},
		Global:         api.ConfigOverride{Locations: []string{"eu-central-1"}},
	}
	e, _ := newTestEngine(backend, cfg, nil)

	_, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.triggerReqs, 1)
	require.Equal(t, []string{"eu-central-1"}, backend.triggerReqs[0].Tests[0].Locations)
}

func TestRunCountsCriticalErrors(t *testing.T) {
	unhealthy := true
	failed := false
	backend := &fakeBackend{
		tests: map[string]*api.Test{
			"aaa-aaa-aaa": browserTest("aaa-aaa-aaa", ""),
		},
		triggerResponse: triggerFor(api.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1"}),
		pollQueue: []pollStep{
			{results: []api.PollResult{{
				ResultID: "r1",
				Result:   api.Result{EventType: api.EventTypeFinished, Passed: &failed, Unhealthy: &unhealthy},
			}}},
		},
	}
	cfg := &config.Config{
		PollingTimeout: 60000,
		PublicIDs:      []string{"aaa-aaa-aaa"},
	}
	e, _ := newTestEngine(backend, cfg, nil)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.CriticalErrors)
	require.Equal(t, 1, summary.Passed, "critical errors pass while the flag is off")

	// same run with failOnCriticalErrors: the unhealthy result now fails.
	backend.pollQueue = []pollStep{
		{results: []api.PollResult{{
			ResultID: "r1",
			Result:   api.Result{EventType: api.EventTypeFinished, Passed: &failed, Unhealthy: &unhealthy},
		}}},
	}
	cfg.FailOnCriticalErrors = true
	e2, _ := newTestEngine(backend, cfg, nil)
	summary, err = e2.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
}

func TestRunReportsLifecycle(t *testing.T) {
	backend := &fakeBackend{
		tests: map[string]*api.Test{
			"aaa-aaa-aaa": browserTest("aaa-aaa-aaa", ""),
		},
		triggerResponse: triggerFor(api.TriggerResponse{PublicID: "aaa-aaa-aaa", ResultID: "r1"}),
		pollQueue:       []pollStep{{results: []api.PollResult{finished("r1", true, "")}}},
	}
	cfg := &config.Config{PollingTimeout: 60000, PublicIDs: []string{"aaa-aaa-aaa"}}

	rec := &lifecycleRecorder{}
	e, _ := newTestEngine(backend, cfg, reporters.NewMulti(rec))

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"reportStart", "testTrigger", "testWait", "testsWait", "resultReceived", "resultEnd", "testEnd", "runEnd"}, rec.events)
}

type lifecycleRecorder struct {
	events []string
}

func (l *lifecycleRecorder) ReportStart(start time.Time) { l.events = append(l.events, "reportStart") }

func (l *lifecycleRecorder) TestTrigger(test *api.Test, id string, rule api.ExecutionRule, override *api.ConfigOverride) {
	l.events = append(l.events, "testTrigger")
}

func (l *lifecycleRecorder) TestWait(test *api.Test) { l.events = append(l.events, "testWait") }

func (l *lifecycleRecorder) TestsWait(tests []*api.Test) { l.events = append(l.events, "testsWait") }

func (l *lifecycleRecorder) ResultReceived(result *api.PollResult) {
	l.events = append(l.events, "resultReceived")
}

func (l *lifecycleRecorder) ResultEnd(result *api.PollResult, baseURL string) {
	l.events = append(l.events, "resultEnd")
}

func (l *lifecycleRecorder) TestEnd(test *api.Test, results []api.PollResult, baseURL string, locationNames map[int]string, failOnCriticalErrors, failOnTimeout bool) {
	l.events = append(l.events, "testEnd")
}

func (l *lifecycleRecorder) RunEnd(summary *api.Summary, baseURL string) {
	l.events = append(l.events, "runEnd")
}

func TestCollectTriggerConfigsFromSuites(t *testing.T) {
	dir := t.TempDir()
	suite := filepath.Join(dir, "checkout.synthetics.json")
	require.NoError(t, os.WriteFile(suite, []byte(`{
		"tests": [
			{"id": "aaa-aaa-aaa", "config": {"startUrl": "https://example.org"}},
			{"id": "bbb-bbb-bbb"}
		]
	}`), 0o644))

	cfg := &config.Config{
		PollingTimeout: 60000,
		Files:          filepath.Join(dir, "*.synthetics.json"),
		Global:         api.ConfigOverride{ExecutionRule: api.RuleNonBlocking},
	}
	e, _ := newTestEngine(&fakeBackend{}, cfg, nil)

	configs, err := e.collectTriggerConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	require.Equal(t, "aaa-aaa-aaa", configs[0].ID)
	require.Equal(t, "https://example.org", *configs[0].Config.StartURL)
	require.Equal(t, api.RuleNonBlocking, configs[0].Config.ExecutionRule, "global override fills unset fields")
	require.Equal(t, api.RuleNonBlocking, configs[1].Config.ExecutionRule)
	require.Equal(t, suite, configs[0].Suite)
}
