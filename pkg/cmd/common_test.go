package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOverrides(t *testing.T) {
	o, err := parseOverrides([]string{
		"startUrl=https://example.org",
		"pollingTimeout=30000",
		"executionRule=non_blocking",
		"whatIsThis=dropped",
	})
	require.NoError(t, err)
	require.Equal(t, "https://example.org", *o.StartURL)
	require.EqualValues(t, 30000, *o.PollingTimeout)
	require.Equal(t, "non_blocking", string(o.ExecutionRule))
}

func TestParseOverridesEmpty(t *testing.T) {
	o, err := parseOverrides(nil)
	require.NoError(t, err)
	require.Nil(t, o)
}

func TestParseOverridesMalformedPair(t *testing.T) {
	_, err := parseOverrides([]string{"no-equals-sign"})
	require.Error(t, err)
}
