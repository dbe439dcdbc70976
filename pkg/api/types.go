package api

// ExecutionRule controls how a test's verdict affects the CI job: a blocking
// test fails the job, a non-blocking test is reported but doesn't, and a
// skipped test is never triggered.
type ExecutionRule string

const (
	RuleBlocking    ExecutionRule = "blocking"
	RuleNonBlocking ExecutionRule = "non_blocking"
	RuleSkipped     ExecutionRule = "skipped"
)

// strictness orders execution rules; a stricter rule always wins when a test
// and an override disagree.
func (r ExecutionRule) strictness() int {
	switch r {
	case RuleSkipped:
		return 2
	case RuleNonBlocking:
		return 1
	default:
		return 0
	}
}

// Test types and subtypes as reported by the backend.
const (
	TypeAPI     = "api"
	TypeBrowser = "browser"

	SubtypeHTTP = "http"
)

// Synthetic error codes attached to results the engine fabricates locally
// when it cannot obtain a real verdict from the backend.
const (
	ErrTimeout  = "TIMEOUT"
	ErrTunnel   = "TUNNEL"
	ErrEndpoint = "ENDPOINT"
)

// EventTypeFinished marks a poll result as terminal. Any other event type is
// an intermediate snapshot and is ignored by the polling loop.
const EventTypeFinished = "finished"

// Test is the backend's description of a synthetic test. It is immutable
// within an invocation.
type Test struct {
	PublicID  string      `json:"public_id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Subtype   string      `json:"subtype,omitempty"`
	Status    string      `json:"status,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	Locations []string    `json:"locations,omitempty"`
	Config    TestConfig  `json:"config"`
	Options   TestOptions `json:"options"`

	// Suite records which suite file referenced this test, when any.
	Suite string `json:"suite,omitempty"`
}

type TestConfig struct {
	Request TestRequest `json:"request"`
}

type TestRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout float64           `json:"timeout,omitempty"`
}

type TestOptions struct {
	CI               *CIOptions `json:"ci,omitempty"`
	DeviceIDs        []string   `json:"device_ids,omitempty"`
	TickEvery        int        `json:"tick_every,omitempty"`
	MinFailureStreak int        `json:"min_failure_duration,omitempty"`
}

type CIOptions struct {
	ExecutionRule ExecutionRule `json:"executionRule,omitempty"`
}

// BasicAuthCredentials carries the credentials an override may inject into a
// test's requests.
type BasicAuthCredentials struct {
	Username string `json:"username" toml:"username" mapstructure:"username"`
	Password string `json:"password" toml:"password" mapstructure:"password"`
}

// RetryConfig is the backend-side retry policy an override may set.
type RetryConfig struct {
	Count    int   `json:"count,omitempty" toml:"count" mapstructure:"count"`
	Interval int64 `json:"interval,omitempty" toml:"interval" mapstructure:"interval"`
}

// ConfigOverride is the set of recognised per-test options a user may supply,
// from a suite file or from repository-level configuration. Unknown keys are
// discarded at decode time.
type ConfigOverride struct {
	AllowInsecureCertificates *bool                 `json:"allowInsecureCertificates,omitempty" toml:"allow_insecure_certificates" mapstructure:"allowInsecureCertificates"`
	BasicAuth                 *BasicAuthCredentials `json:"basicAuth,omitempty" toml:"basic_auth" mapstructure:"basicAuth"`
	Body                      *string               `json:"body,omitempty" toml:"body" mapstructure:"body"`
	BodyType                  *string               `json:"bodyType,omitempty" toml:"body_type" mapstructure:"bodyType"`
	Cookies                   *string               `json:"cookies,omitempty" toml:"cookies" mapstructure:"cookies"`
	DefaultStepTimeout        *float64              `json:"defaultStepTimeout,omitempty" toml:"default_step_timeout" mapstructure:"defaultStepTimeout"`
	DeviceIDs                 []string              `json:"deviceIds,omitempty" toml:"device_ids" mapstructure:"deviceIds"`
	FollowRedirects           *bool                 `json:"followRedirects,omitempty" toml:"follow_redirects" mapstructure:"followRedirects"`
	Headers                   map[string]string     `json:"headers,omitempty" toml:"headers" mapstructure:"headers"`
	Locations                 []string              `json:"locations,omitempty" toml:"locations" mapstructure:"locations"`
	PollingTimeout            *int64                `json:"pollingTimeout,omitempty" toml:"polling_timeout" mapstructure:"pollingTimeout"`
	Retry                     *RetryConfig          `json:"retry,omitempty" toml:"retry" mapstructure:"retry"`
	StartURL                  *string               `json:"startUrl,omitempty" toml:"start_url" mapstructure:"startUrl"`
	StartURLSubstitutionRegex *string               `json:"startUrlSubstitutionRegex,omitempty" toml:"start_url_substitution_regex" mapstructure:"startUrlSubstitutionRegex"`
	Tunnel                    *bool                 `json:"tunnel,omitempty" toml:"tunnel" mapstructure:"tunnel"`
	Variables                 map[string]string     `json:"variables,omitempty" toml:"variables" mapstructure:"variables"`
	ExecutionRule             ExecutionRule         `json:"executionRule,omitempty" toml:"execution_rule" mapstructure:"executionRule"`
}

// IsEmpty reports whether the override carries no recognised option at all.
func (o *ConfigOverride) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.AllowInsecureCertificates == nil &&
		o.BasicAuth == nil &&
		o.Body == nil &&
		o.BodyType == nil &&
		o.Cookies == nil &&
		o.DefaultStepTimeout == nil &&
		o.DeviceIDs == nil &&
		o.FollowRedirects == nil &&
		o.Headers == nil &&
		o.Locations == nil &&
		o.PollingTimeout == nil &&
		o.Retry == nil &&
		o.StartURL == nil &&
		o.StartURLSubstitutionRegex == nil &&
		o.Tunnel == nil &&
		o.Variables == nil &&
		o.ExecutionRule == ""
}

// TriggerConfig pairs a test identifier with the override to apply to it. It
// is the element type of suite files.
type TriggerConfig struct {
	ID     string          `json:"id"`
	Config *ConfigOverride `json:"config,omitempty"`

	// Suite is the name of the suite file this entry was loaded from; empty
	// for entries built from the command line.
	Suite string `json:"-"`
}

// Payload is the wire form of one test submission: the public id, the
// resolved execution rule, and whichever recognised overrides apply.
type Payload struct {
	PublicID      string        `json:"public_id"`
	ExecutionRule ExecutionRule `json:"executionRule"`

	AllowInsecureCertificates *bool                 `json:"allowInsecureCertificates,omitempty"`
	BasicAuth                 *BasicAuthCredentials `json:"basicAuth,omitempty"`
	Body                      *string               `json:"body,omitempty"`
	BodyType                  *string               `json:"bodyType,omitempty"`
	Cookies                   *string               `json:"cookies,omitempty"`
	DefaultStepTimeout        *float64              `json:"defaultStepTimeout,omitempty"`
	DeviceIDs                 []string              `json:"deviceIds,omitempty"`
	FollowRedirects           *bool                 `json:"followRedirects,omitempty"`
	Headers                   map[string]string     `json:"headers,omitempty"`
	Locations                 []string              `json:"locations,omitempty"`
	Retry                     *RetryConfig          `json:"retry,omitempty"`
	StartURL                  string                `json:"startUrl,omitempty"`
	Variables                 map[string]string     `json:"variables,omitempty"`
}

// TriggerResponse is the backend's acknowledgment for one submitted payload.
type TriggerResponse struct {
	PublicID string `json:"public_id"`
	ResultID string `json:"result_id"`
	Device   string `json:"device"`
	Location int    `json:"location"`
}

// Location describes a backend probe location, keyed by the numeric id the
// trigger responses refer to.
type Location struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Region      string `json:"region,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// Trigger is the backend's response to a batched trigger request.
type Trigger struct {
	BatchID   string            `json:"batch_id,omitempty"`
	Results   []TriggerResponse `json:"results"`
	Locations []Location        `json:"locations,omitempty"`
}

// Device describes the device a browser test ran on.
type Device struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Timings carries the backend-side timing breakdown of an API test run.
type Timings struct {
	Total float64 `json:"total"`
}

// Step is one step of a browser test run.
type Step struct {
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Error       string  `json:"error,omitempty"`
	URL         string  `json:"url,omitempty"`
}

// Result is the inner verdict of a poll result. Verdict fields are partially
// observed: any of passed, error, errorCode and unhealthy may be absent.
type Result struct {
	Passed       *bool    `json:"passed,omitempty"`
	Error        string   `json:"error,omitempty"`
	ErrorCode    string   `json:"errorCode,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Unhealthy    *bool    `json:"unhealthy,omitempty"`
	EventType    string   `json:"eventType"`
	Duration     *float64 `json:"duration,omitempty"`
	Timings      *Timings `json:"timings,omitempty"`
	StartURL     string   `json:"startUrl,omitempty"`
	StepDetails  []Step   `json:"stepDetails"`
	Tunnel       bool     `json:"tunnel,omitempty"`
	Device       Device   `json:"device"`
}

// PollResult is one entry of a poll response.
type PollResult struct {
	ResultID  string `json:"resultID"`
	DCID      int    `json:"dc_id"`
	Timestamp int64  `json:"timestamp"`
	Result    Result `json:"result"`
}

// TriggerResult is the unit of polling state: one trigger response, its
// polling budget, and its terminal result once known.
type TriggerResult struct {
	TriggerResponse

	// PollingTimeout is the wall-clock budget, in milliseconds, within which
	// this test's terminal result must be observed.
	PollingTimeout int64

	// Result is nil while the test is still pending.
	Result *PollResult
}

// Summary aggregates the counters of one invocation.
type Summary struct {
	BatchID           string              `json:"batch_id,omitempty"`
	Passed            int                 `json:"passed"`
	Failed            int                 `json:"failed"`
	FailedNonBlocking int                 `json:"failed_non_blocking"`
	Skipped           int                 `json:"skipped"`
	TimedOut          int                 `json:"timed_out"`
	CriticalErrors    int                 `json:"critical_errors"`
	TestsNotFound     map[string]struct{} `json:"-"`
}

func NewSummary() *Summary {
	return &Summary{TestsNotFound: map[string]struct{}{}}
}

// AddNotFound records an identifier the backend did not recognise.
func (s *Summary) AddNotFound(id string) {
	if s.TestsNotFound == nil {
		s.TestsNotFound = map[string]struct{}{}
	}
	s.TestsNotFound[id] = struct{}{}
}
