package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/client"
)

// pollInterval is the fixed pause between batched polls.
const pollInterval = 5 * time.Second

// waitForResults drives the polling loop until every trigger response has a
// terminal result: polled from the backend, or synthesised on a per-test
// timeout, a tunnel drop, or a degraded backend. The returned mapping lists
// each public id's results in the order its trigger responses were returned.
func (e *Engine) waitForResults(ctx context.Context, trigger *api.Trigger, configs []api.TriggerConfig) (map[string][]api.PollResult, error) {
	// Per-test polling budgets, keyed by public id.
	budgets := make(map[string]int64, len(configs))
	for _, c := range configs {
		if c.Config != nil && c.Config.PollingTimeout != nil {
			budgets[c.ID] = *c.Config.PollingTimeout
		}
	}

	items := make([]*api.TriggerResult, 0, len(trigger.Results))
	byResultID := make(map[string]*api.TriggerResult, len(trigger.Results))
	var maxTimeout int64
	for _, tr := range trigger.Results {
		budget := e.cfg.PollingTimeout
		if b, ok := budgets[tr.PublicID]; ok {
			budget = b
		}
		if budget > maxTimeout {
			maxTimeout = budget
		}
		item := &api.TriggerResult{TriggerResponse: tr, PollingTimeout: budget}
		items = append(items, item)
		byResultID[tr.ResultID] = item
	}

	// Tunnel liveness is a one-way flag: it starts up, and the keepAlive
	// goroutine flips it down on either outcome.
	var tunnelDown uint32
	hasTunnel := e.tun != nil
	if hasTunnel {
		go func() {
			if err := e.tun.KeepAlive(ctx); err != nil {
				e.reporter.Error(err)
			}
			atomic.StoreUint32(&tunnelDown, 1)
		}()
	}

	pending := func() []*api.TriggerResult {
		var out []*api.TriggerResult
		for _, item := range items {
			if item.Result == nil {
				out = append(out, item)
			}
		}
		return out
	}

	pollingStart := e.now()
	for len(pending()) > 0 {
		elapsed := e.now().Sub(pollingStart).Milliseconds()

		for _, item := range pending() {
			if elapsed >= item.PollingTimeout {
				e.resolve(item, api.ErrTimeout, hasTunnel)
			}
		}

		if hasTunnel && atomic.LoadUint32(&tunnelDown) == 1 {
			for _, item := range pending() {
				e.resolve(item, api.ErrTunnel, hasTunnel)
			}
		}

		if elapsed >= maxTimeout {
			break
		}

		remaining := pending()
		if len(remaining) == 0 {
			break
		}

		ids := make([]string, 0, len(remaining))
		for _, item := range remaining {
			ids = append(ids, item.ResultID)
		}

		polled, err := e.backend.PollResults(ctx, ids)
		if err != nil {
			if client.IsServerError(err) && !e.cfg.FailOnCriticalErrors {
				e.reporter.Error(err)
				for _, item := range pending() {
					e.resolve(item, api.ErrEndpoint, hasTunnel)
				}
				continue
			}
			return nil, err
		}

		for i := range polled {
			r := polled[i]
			if r.Result.EventType != api.EventTypeFinished {
				continue
			}
			item := byResultID[r.ResultID]
			if item == nil || item.Result != nil {
				continue
			}
			item.Result = &r
			e.reporter.ResultReceived(&r)
		}

		if len(pending()) > 0 {
			if err := e.sleep(ctx, pollInterval); err != nil {
				return nil, err
			}
		}
	}

	results := make(map[string][]api.PollResult, len(items))
	for _, item := range items {
		results[item.PublicID] = append(results[item.PublicID], *item.Result)
	}
	return results, nil
}

// resolve synthesises a terminal result for a still-pending trigger result.
func (e *Engine) resolve(item *api.TriggerResult, errCode string, hasTunnel bool) {
	failed := false
	duration := 0.0
	item.Result = &api.PollResult{
		ResultID:  item.ResultID,
		DCID:      item.Location,
		Timestamp: 0,
		Result: api.Result{
			Device:      api.Device{ID: item.Device},
			Duration:    &duration,
			Error:       errCode,
			EventType:   api.EventTypeFinished,
			Passed:      &failed,
			StartURL:    "",
			StepDetails: []api.Step{},
			Tunnel:      hasTunnel,
		},
	}
	e.reporter.ResultReceived(item.Result)
}
