package api

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	logs   []string
	errors []error
}

func (n *recordingNotifier) Log(msg string)  { n.logs = append(n.logs, msg) }
func (n *recordingNotifier) Error(err error) { n.errors = append(n.errors, err) }

func strPtr(s string) *string { return &s }

func TestNormalizeID(t *testing.T) {
	require.Equal(t, "abc-def-ghi", NormalizeID("abc-def-ghi"))
	require.Equal(t, "abc-def-ghi", NormalizeID("https://example/tests/abc-def-ghi"))
	require.Equal(t, "123-456-789", NormalizeID("app.example.com/synthetics/details/123-456-789"))
}

func TestResolveExecutionRuleStrictestWins(t *testing.T) {
	cases := []struct {
		test     ExecutionRule
		override ExecutionRule
		want     ExecutionRule
	}{
		{"", "", RuleBlocking},
		{RuleBlocking, RuleNonBlocking, RuleNonBlocking},
		{RuleNonBlocking, RuleBlocking, RuleNonBlocking},
		{RuleSkipped, RuleBlocking, RuleSkipped},
		{RuleBlocking, RuleSkipped, RuleSkipped},
		{RuleNonBlocking, "", RuleNonBlocking},
		{"", RuleNonBlocking, RuleNonBlocking},
	}

	for _, c := range cases {
		test := &Test{}
		if c.test != "" {
			test.Options.CI = &CIOptions{ExecutionRule: c.test}
		}
		var override *ConfigOverride
		if c.override != "" {
			override = &ConfigOverride{ExecutionRule: c.override}
		}
		require.Equal(t, c.want, ResolveExecutionRule(test, override), "test=%s override=%s", c.test, c.override)
	}
}

func TestBuildPayloadEmptyOverride(t *testing.T) {
	test := &Test{PublicID: "abc-def-ghi", Type: TypeAPI}

	p := BuildPayload(test, "abc-def-ghi", nil, nil)
	require.Equal(t, "abc-def-ghi", p.PublicID)
	require.Equal(t, RuleBlocking, p.ExecutionRule)
	require.Empty(t, p.StartURL)
	require.Nil(t, p.Headers)
}

func TestBuildPayloadStartURLOnlyForNavigatingTests(t *testing.T) {
	override := &ConfigOverride{StartURL: strPtr("https://example.org/start")}

	apiTest := &Test{Type: TypeAPI, Subtype: "dns"}
	p := BuildPayload(apiTest, "aaa-aaa-aaa", override, nil)
	require.Empty(t, p.StartURL)

	httpTest := &Test{Type: TypeAPI, Subtype: SubtypeHTTP, Config: TestConfig{Request: TestRequest{URL: "https://example.org"}}}
	p = BuildPayload(httpTest, "aaa-aaa-aaa", override, nil)
	require.Equal(t, "https://example.org/start", p.StartURL)

	browserTest := &Test{Type: TypeBrowser, Config: TestConfig{Request: TestRequest{URL: "https://example.org"}}}
	p = BuildPayload(browserTest, "aaa-aaa-aaa", override, nil)
	require.Equal(t, "https://example.org/start", p.StartURL)
}

func TestRenderStartURLSubdomainSwap(t *testing.T) {
	n := &recordingNotifier{}
	rendered := RenderStartURL(
		"{{PROTOCOL}}//{{SUBDOMAIN}}.staging.{{DOMAIN}}{{PATHNAME}}",
		"https://api.shop.example.com/v1",
		n,
	)
	require.Equal(t, "https://api.staging.shop.example.com/v1", rendered)
	require.Empty(t, n.errors)
}

func TestRenderStartURLReservedKeyShadowsEnvironment(t *testing.T) {
	os.Setenv("SUBDOMAIN", "ignored")
	defer os.Unsetenv("SUBDOMAIN")

	n := &recordingNotifier{}
	rendered := RenderStartURL("https://{{ SUBDOMAIN }}.example.org", "https://api.shop.example.com/v1", n)
	require.Equal(t, "https://api.example.org", rendered)
	require.NotEmpty(t, n.logs, "expected a shadowing warning")
}

func TestRenderStartURLEnvironmentFallback(t *testing.T) {
	os.Setenv("CUSTOM_STAGE", "purple")
	defer os.Unsetenv("CUSTOM_STAGE")

	n := &recordingNotifier{}
	rendered := RenderStartURL("https://{{CUSTOM_STAGE}}.example.org{{PATHNAME}}", "://not a url", n)
	require.Equal(t, "https://purple.example.org{{PATHNAME}}", rendered)
	require.NotEmpty(t, n.errors, "expected a parse error diagnostic")
}

func TestRenderStartURLUnresolvedPlaceholdersKeptVerbatim(t *testing.T) {
	rendered := RenderStartURL("https://example.org/{{ NOT_A_THING }}", "https://example.org", nil)
	require.Equal(t, "https://example.org/{{ NOT_A_THING }}", rendered)
}

func TestRenderStartURLWholeContext(t *testing.T) {
	rendered := RenderStartURL(
		"{{ORIGIN}}{{PATHNAME}}{{PARAMS}}{{HASH}}",
		"https://user.example.com:8443/p/a?q=1#frag",
		nil,
	)
	require.Equal(t, "https://user.example.com:8443/p/a?q=1#frag", rendered)

	rendered = RenderStartURL("{{HOSTNAME}}:{{PORT}}", "https://user.example.com:8443/p", nil)
	require.Equal(t, "user.example.com:8443", rendered)
}

func TestRenderStartURLNoSubdomainForShortHosts(t *testing.T) {
	rendered := RenderStartURL("{{DOMAIN}}|{{SUBDOMAIN}}", "https://example.com/x", nil)
	require.Equal(t, "example.com|{{SUBDOMAIN}}", rendered)
}

func TestMergeOverridesPerTestWins(t *testing.T) {
	perTest := &ConfigOverride{
		StartURL:  strPtr("https://per-test.example.org"),
		Locations: []string{"eu-west-1"},
	}
	global := &ConfigOverride{
		StartURL:      strPtr("https://global.example.org"),
		ExecutionRule: RuleNonBlocking,
		Variables:     map[string]string{"STAGE": "ci"},
	}

	require.NoError(t, MergeOverrides(perTest, global))
	require.Equal(t, "https://per-test.example.org", *perTest.StartURL)
	require.Equal(t, RuleNonBlocking, perTest.ExecutionRule)
	require.Equal(t, []string{"eu-west-1"}, perTest.Locations)
	require.Equal(t, "ci", perTest.Variables["STAGE"])
}

func TestDecodeOverrideDiscardsUnknownKeys(t *testing.T) {
	o, err := DecodeOverride(map[string]interface{}{
		"startUrl":       "https://example.org",
		"pollingTimeout": 30000,
		"bogusKey":       "dropped",
		"deviceIds":      []string{"chrome.laptop_large"},
	})
	require.NoError(t, err)
	require.Equal(t, "https://example.org", *o.StartURL)
	require.EqualValues(t, 30000, *o.PollingTimeout)
	require.Equal(t, []string{"chrome.laptop_large"}, o.DeviceIDs)
	require.True(t, o.BasicAuth == nil && o.Body == nil)
}

func TestIsEmpty(t *testing.T) {
	require.True(t, (&ConfigOverride{}).IsEmpty())
	require.True(t, (*ConfigOverride)(nil).IsEmpty())
	require.False(t, (&ConfigOverride{ExecutionRule: RuleBlocking}).IsEmpty())
}
