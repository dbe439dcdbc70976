package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/client"
	"github.com/synthwatch/synthwatch/pkg/logging"
	"github.com/synthwatch/synthwatch/pkg/metadata"
)

// triggeredTest couples a resolved test with the override it was submitted
// under.
type triggeredTest struct {
	test    *api.Test
	config  *api.ConfigOverride
	rule    api.ExecutionRule
	payload *api.Payload
}

type lookup struct {
	test *api.Test
	err  error
}

// getTestsToTrigger resolves every trigger config against the backend and
// builds the payloads to submit. Lookups run in parallel; a failure in one
// never cancels its siblings. Unknown test ids accumulate and are surfaced en
// masse once all lookups settle; any other lookup error aborts the
// invocation. Tests whose resolved rule is skipped are counted and dropped.
func (e *Engine) getTestsToTrigger(ctx context.Context, configs []api.TriggerConfig, summary *api.Summary) ([]*triggeredTest, error) {
	lookups := make([]lookup, len(configs))

	var wg sync.WaitGroup
	for i := range configs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			test, err := e.backend.GetTest(ctx, configs[i].ID)
			lookups[i] = lookup{test: test, err: err}
		}(i)
	}
	wg.Wait()

	var (
		triggered  []*triggeredTest
		initErrors *multierror.Error
	)
	for i, l := range lookups {
		id := configs[i].ID
		if l.err != nil {
			if client.IsNotFound(l.err) {
				summary.AddNotFound(id)
				initErrors = multierror.Append(initErrors, fmt.Errorf("[%s] test not found: %w", id, l.err))
				continue
			}
			return nil, fmt.Errorf("failed to look up test %s: %w", id, l.err)
		}

		override := configs[i].Config
		rule := api.ResolveExecutionRule(l.test, override)
		e.reporter.TestTrigger(l.test, id, rule, override)

		if rule == api.RuleSkipped {
			summary.Skipped++
			continue
		}

		payload := api.BuildPayload(l.test, id, override, e.reporter)
		e.reporter.TestWait(l.test)

		triggered = append(triggered, &triggeredTest{
			test:    l.test,
			config:  override,
			rule:    rule,
			payload: payload,
		})
	}

	if errs := initErrors.ErrorOrNil(); errs != nil {
		e.reporter.InitErrors(initErrors.Errors)
	}

	if len(triggered) == 0 {
		return nil, ErrNoTestsToTrigger
	}
	return triggered, nil
}

// trigger submits all payloads in one batched request with CI and git
// metadata attached. A failure is wrapped into a single error naming every
// submitted public id.
func (e *Engine) trigger(ctx context.Context, triggered []*triggeredTest) (*api.Trigger, error) {
	payloads := make([]*api.Payload, 0, len(triggered))
	ids := make([]string, 0, len(triggered))
	for _, tt := range triggered {
		payloads = append(payloads, tt.payload)
		ids = append(ids, tt.payload.PublicID)
	}

	req := &client.TriggerRequest{
		Tests:    payloads,
		Metadata: metadata.Collect(TriggerApp()),
	}

	trigger, err := e.backend.TriggerTests(ctx, req)
	if err != nil {
		if status := client.StatusOf(err); status != 0 {
			return nil, fmt.Errorf("failed to trigger tests %s (HTTP %d): %w", strings.Join(ids, ", "), status, err)
		}
		return nil, fmt.Errorf("failed to trigger tests %s: %w", strings.Join(ids, ", "), err)
	}

	if trigger.BatchID == "" {
		trigger.BatchID = uuid.NewString()
		logging.S().Debugw("backend returned no batch id, generated one", "batch_id", trigger.BatchID)
	}
	return trigger, nil
}
