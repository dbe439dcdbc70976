// Package client implements the HTTP client for the synthetics backend: test
// lookup, batched trigger submission, and result polling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/config"
	"github.com/synthwatch/synthwatch/pkg/logging"
	"github.com/synthwatch/synthwatch/pkg/retry"
)

// Client performs all operations against the synthetics backend.
type Client struct {
	// client used to send and receive http requests.
	client  *http.Client
	baseURL string
	apiKey  string
	appKey  string
}

// New initializes a new API client.
func New(cfg *config.Config) *Client {
	logging.S().Debugw("backend client initialized", "addr", cfg.BaseURL)

	return &Client{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		appKey:  cfg.AppKey,
	}
}

// Close the transport used by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// GetTest fetches the backend's description of one test.
func (c *Client) GetTest(ctx context.Context, publicID string) (*api.Test, error) {
	var test api.Test
	if err := c.request(ctx, http.MethodGet, "/tests/"+url.PathEscape(publicID), nil, &test); err != nil {
		return nil, err
	}
	if test.PublicID == "" {
		test.PublicID = publicID
	}
	return &test, nil
}

// TriggerTests submits all payloads in one batched request. The backend
// treats the batch atomically: either every test is triggered, or none is.
func (c *Client) TriggerTests(ctx context.Context, req *TriggerRequest) (*api.Trigger, error) {
	var trigger api.Trigger
	if err := c.request(ctx, http.MethodPost, "/tests/trigger/ci", req, &trigger); err != nil {
		return nil, err
	}
	return &trigger, nil
}

// PollResults requests the current results for a set of result ids. The
// response may cover only a subset of the ids; a missing id means that result
// is still pending.
func (c *Client) PollResults(ctx context.Context, resultIDs []string) ([]api.PollResult, error) {
	ids, err := json.Marshal(resultIDs)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("result_ids", string(ids))

	var resp PollResultsResponse
	if err := c.request(ctx, http.MethodGet, "/tests/poll_results?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// request sends one JSON request and decodes the JSON response into out.
// Transport failures and 5xx responses are retried a few times before being
// surfaced; client errors (4xx) are never retried.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return err
		}
	}

	attempt := func() error {
		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("X-App-Key", c.appKey)

		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= 400 {
			raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
			return &HTTPError{Status: res.StatusCode, Path: path, Body: strings.TrimSpace(string(raw))}
		}
		if out == nil {
			return nil
		}
		return json.NewDecoder(res.Body).Decode(out)
	}

	return retry.Do(ctx, attempt, func(retries int, err error) time.Duration {
		if retries >= 3 || !isRetryable(err) {
			return 0
		}
		logging.S().Debugw("retrying backend request", "path", path, "attempt", retries+1, "error", err)
		return 500 * time.Millisecond
	})
}

// Only transport errors and server-side failures are worth retrying.
func isRetryable(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	Status int
	Path   string
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned HTTP %d for %s", e.Status, e.Path)
	}
	return fmt.Sprintf("backend returned HTTP %d for %s: %s", e.Status, e.Path, e.Body)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// IsForbidden reports whether err is a backend 403.
func IsForbidden(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusForbidden
}

// IsServerError reports whether err is a backend 5xx.
func IsServerError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status >= 500
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
