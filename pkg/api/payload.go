package api

import (
	"fmt"

	"github.com/imdario/mergo"
	"github.com/mitchellh/mapstructure"
)

// BuildPayload assembles the wire payload for one test. With no override (or
// an empty one) the payload is just the public id and the resolved execution
// rule; otherwise the recognised override options are carried over, and the
// start URL template is rendered for the test types that honour it. The
// pollingTimeout, tunnel and startUrlSubstitutionRegex options are not copied
// into the payload.
func BuildPayload(test *Test, publicID string, override *ConfigOverride, n Notifier) *Payload {
	p := &Payload{
		PublicID:      publicID,
		ExecutionRule: ResolveExecutionRule(test, override),
	}
	if override.IsEmpty() {
		return p
	}

	p.AllowInsecureCertificates = override.AllowInsecureCertificates
	p.BasicAuth = override.BasicAuth
	p.Body = override.Body
	p.BodyType = override.BodyType
	p.Cookies = override.Cookies
	p.DefaultStepTimeout = override.DefaultStepTimeout
	p.DeviceIDs = override.DeviceIDs
	p.FollowRedirects = override.FollowRedirects
	p.Headers = override.Headers
	p.Locations = override.Locations
	p.Retry = override.Retry
	p.Variables = override.Variables

	if override.StartURL != nil && honoursStartURL(test) {
		p.StartURL = RenderStartURL(*override.StartURL, test.Config.Request.URL, n)
	}
	return p
}

// Browser tests and http api tests navigate to a start URL; other test types
// ignore the option.
func honoursStartURL(test *Test) bool {
	if test == nil {
		return false
	}
	return test.Type == TypeBrowser || (test.Type == TypeAPI && test.Subtype == SubtypeHTTP)
}

// MergeOverrides fills the unset options of dst from src, so that per-test
// options win over repository-level ones.
func MergeOverrides(dst, src *ConfigOverride) error {
	if src == nil || dst == nil {
		return nil
	}
	return mergo.Merge(dst, src)
}

// DecodeOverride builds a ConfigOverride from a loosely-typed key/value map,
// such as command-line `--override key=value` pairs. Keys that are not
// recognised options are discarded.
func DecodeOverride(raw map[string]interface{}) (*ConfigOverride, error) {
	var o ConfigOverride
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode test override: %w", err)
	}
	return &o, nil
}
