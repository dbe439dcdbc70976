package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/logging"
)

const (
	DefaultBaseURL = "https://api.synthwatch.dev/api/v1"
	DefaultWebURL  = "https://app.synthwatch.dev"

	// DefaultPollingTimeout is the per-test wall-clock budget, in
	// milliseconds, when neither the config file nor the test override sets
	// one.
	DefaultPollingTimeout int64 = 120000

	// DefaultTriggerApp tags trigger requests that did not customise the
	// integration surface they come from.
	DefaultTriggerApp = "go_package"

	defaultConfigFile = ".synthwatch.toml"
)

// Config is the invocation configuration. It is populated by coalescing
// values from these sources, in descending order of precedence:
//
//  1. command-line flags (applied by the caller, after Load).
//  2. environment variables.
//  3. the .synthwatch.toml file.
//  4. default fallbacks.
type Config struct {
	APIKey  string `toml:"api_key"`
	AppKey  string `toml:"app_key"`
	BaseURL string `toml:"base_url"`
	WebURL  string `toml:"web_url"`

	// Files is the glob pattern locating suite files.
	Files string `toml:"files"`

	// PublicIDs triggers tests directly, without a suite file.
	PublicIDs []string `toml:"public_ids"`

	// Global holds repository-level overrides applied to every triggered
	// test; per-test options win over these.
	Global api.ConfigOverride `toml:"global"`

	FailOnCriticalErrors bool  `toml:"fail_on_critical_errors"`
	FailOnTimeout        bool  `toml:"fail_on_timeout"`
	PollingTimeout       int64 `toml:"polling_timeout"`

	TriggerApp string `toml:"trigger_app"`
}

// Load populates the config from file and environment. path selects an
// explicit config file; when empty, .synthwatch.toml in the working directory
// is used if present.
func (c *Config) Load(path string) error {
	// apply fallbacks.
	c.BaseURL = DefaultBaseURL
	c.WebURL = DefaultWebURL
	c.Files = "**/*.synthetics.json"
	c.PollingTimeout = DefaultPollingTimeout
	c.TriggerApp = DefaultTriggerApp

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("found config file at %s, but failed to parse: %w", path, err)
		}
		logging.S().Debugf("config loaded from: %s", path)
	} else if explicit {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	c.applyEnv()
	return nil
}

func (c *Config) applyEnv() {
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				logging.S().Warnf("ignoring %s=%q: not a boolean", key, v)
				return
			}
			*dst = b
		}
	}

	str(&c.APIKey, "SYNTHWATCH_API_KEY")
	str(&c.AppKey, "SYNTHWATCH_APP_KEY")
	str(&c.BaseURL, "SYNTHWATCH_BASE_URL")
	str(&c.WebURL, "SYNTHWATCH_WEB_URL")
	str(&c.Files, "SYNTHWATCH_FILES")
	str(&c.TriggerApp, "SYNTHWATCH_TRIGGER_APP")
	boolean(&c.FailOnCriticalErrors, "SYNTHWATCH_FAIL_ON_CRITICAL_ERRORS")
	boolean(&c.FailOnTimeout, "SYNTHWATCH_FAIL_ON_TIMEOUT")

	if v := os.Getenv("SYNTHWATCH_POLLING_TIMEOUT"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms <= 0 {
			logging.S().Warnf("ignoring SYNTHWATCH_POLLING_TIMEOUT=%q: not a positive integer", v)
		} else {
			c.PollingTimeout = ms
		}
	}
}
