package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/client"
	"github.com/synthwatch/synthwatch/pkg/config"
)

// setupConfig loads the invocation config and applies command-line flags on
// top of file and environment values.
func setupConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := cfg.Load(c.String("config")); err != nil {
		return nil, err
	}

	if c.IsSet("files") {
		cfg.Files = c.String("files")
	}
	if c.IsSet("public-id") {
		cfg.PublicIDs = c.StringSlice("public-id")
	}
	if c.IsSet("fail-on-critical-errors") {
		cfg.FailOnCriticalErrors = c.Bool("fail-on-critical-errors")
	}
	if c.IsSet("fail-on-timeout") {
		cfg.FailOnTimeout = c.Bool("fail-on-timeout")
	}
	if c.IsSet("polling-timeout") {
		cfg.PollingTimeout = c.Int64("polling-timeout")
	}
	if c.IsSet("trigger-app") {
		cfg.TriggerApp = c.String("trigger-app")
	}
	return cfg, nil
}

func setupClient(cfg *config.Config) (*client.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required; set SYNTHWATCH_API_KEY or api_key in the config file")
	}
	return client.New(cfg), nil
}

// parseOverrides turns repeated `key=value` flags into a config override.
// Unrecognised keys are discarded by the decoder.
func parseOverrides(pairs []string) (*api.ConfigOverride, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	raw := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		i := strings.IndexByte(pair, '=')
		if i < 0 {
			return nil, fmt.Errorf("invalid override %q, expected key=value", pair)
		}
		raw[pair[:i]] = pair[i+1:]
	}
	return api.DecodeOverride(raw)
}
