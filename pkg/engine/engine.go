// Package engine implements the trigger-and-wait core: resolving trigger
// configs into payloads, submitting them in one batch, polling for outcomes,
// and classifying results into a run summary.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/client"
	"github.com/synthwatch/synthwatch/pkg/config"
	"github.com/synthwatch/synthwatch/pkg/reporters"
	"github.com/synthwatch/synthwatch/pkg/tunnel"
)

// Backend is the slice of the backend client the engine consumes.
type Backend interface {
	GetTest(ctx context.Context, publicID string) (*api.Test, error)
	TriggerTests(ctx context.Context, req *client.TriggerRequest) (*api.Trigger, error)
	PollResults(ctx context.Context, resultIDs []string) ([]api.PollResult, error)
}

// ErrNoTestsToTrigger is returned when every referenced test was skipped or
// not found.
var ErrNoTestsToTrigger = errors.New("no tests to trigger")

var (
	triggerAppMu sync.RWMutex
	triggerApp   = config.DefaultTriggerApp
)

// SetTriggerApp customises the trigger_app tag attached to request metadata.
// Call it before the first Run.
func SetTriggerApp(name string) {
	triggerAppMu.Lock()
	defer triggerAppMu.Unlock()
	triggerApp = name
}

// TriggerApp returns the current trigger_app tag.
func TriggerApp() string {
	triggerAppMu.RLock()
	defer triggerAppMu.RUnlock()
	return triggerApp
}

// Engine ties one invocation together.
type Engine struct {
	backend  Backend
	cfg      *config.Config
	reporter *reporters.MultiReporter
	tun      tunnel.Tunnel

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(backend Backend, cfg *config.Config, rep *reporters.MultiReporter, tun tunnel.Tunnel) *Engine {
	if rep == nil {
		rep = reporters.NewMulti()
	}
	return &Engine{
		backend:  backend,
		cfg:      cfg,
		reporter: rep,
		tun:      tun,
		now:      time.Now,
		sleep:    defaultSleep,
	}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the whole trigger-and-wait flow and returns the run summary.
func (e *Engine) Run(ctx context.Context) (*api.Summary, error) {
	e.reporter.ReportStart(e.now())

	configs, err := e.collectTriggerConfigs()
	if err != nil {
		return nil, err
	}

	summary := api.NewSummary()

	triggered, err := e.getTestsToTrigger(ctx, configs, summary)
	if err != nil {
		return nil, err
	}

	trigger, err := e.trigger(ctx, triggered)
	if err != nil {
		return nil, err
	}
	summary.BatchID = trigger.BatchID

	tests := make([]*api.Test, 0, len(triggered))
	for _, tt := range triggered {
		tests = append(tests, tt.test)
	}
	e.reporter.TestsWait(tests)

	results, err := e.waitForResults(ctx, trigger, configs)
	if err != nil {
		return nil, err
	}

	e.classifyRun(triggered, trigger, results, summary)
	e.reporter.RunEnd(summary, e.cfg.WebURL)
	return summary, nil
}

// collectTriggerConfigs assembles the trigger configs for this invocation:
// explicit public ids when given, suite files otherwise. The repository-level
// override block is folded into each config, with per-test options winning.
func (e *Engine) collectTriggerConfigs() ([]api.TriggerConfig, error) {
	var configs []api.TriggerConfig

	if len(e.cfg.PublicIDs) > 0 {
		for _, id := range e.cfg.PublicIDs {
			configs = append(configs, api.TriggerConfig{ID: id})
		}
	} else {
		suites, err := LoadSuites(e.cfg.Files, e.reporter)
		if err != nil {
			return nil, err
		}
		for _, s := range suites {
			configs = append(configs, s.Content.Tests...)
		}
	}

	for i := range configs {
		configs[i].ID = api.NormalizeID(configs[i].ID)
		if configs[i].Config == nil {
			configs[i].Config = &api.ConfigOverride{}
		}
		if err := api.MergeOverrides(configs[i].Config, &e.cfg.Global); err != nil {
			return nil, err
		}
	}
	return configs, nil
}

// classifyRun turns the per-test result lists into summary counters and
// reporter events. The trigger order is preserved.
func (e *Engine) classifyRun(triggered []*triggeredTest, trigger *api.Trigger, results map[string][]api.PollResult, summary *api.Summary) {
	locationNames := make(map[int]string, len(trigger.Locations))
	for _, l := range trigger.Locations {
		name := l.DisplayName
		if name == "" {
			name = l.Name
		}
		locationNames[l.ID] = name
	}

	seen := make(map[string]bool, len(triggered))
	for _, tt := range triggered {
		id := tt.test.PublicID
		if seen[id] {
			continue
		}
		seen[id] = true

		testResults := results[id]
		for i := range testResults {
			r := &testResults[i]
			e.reporter.ResultEnd(r, e.cfg.WebURL)

			if r.Result.Error == api.ErrTimeout {
				summary.TimedOut++
			}
			if (r.Result.Unhealthy != nil && *r.Result.Unhealthy) || r.Result.Error == api.ErrEndpoint {
				summary.CriticalErrors++
			}
		}

		if api.HasTestSucceeded(testResults, e.cfg.FailOnCriticalErrors, e.cfg.FailOnTimeout) {
			summary.Passed++
		} else if tt.rule == api.RuleNonBlocking {
			summary.FailedNonBlocking++
		} else {
			summary.Failed++
		}

		e.reporter.TestEnd(tt.test, testResults, e.cfg.WebURL, locationNames, e.cfg.FailOnCriticalErrors, e.cfg.FailOnTimeout)
	}
}
