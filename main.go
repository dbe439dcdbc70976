package main

import (
	"fmt"
	"os"

	"github.com/synthwatch/synthwatch/pkg/cmd"
	"github.com/synthwatch/synthwatch/pkg/logging"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
)

func main() {
	app := &cli.App{
		Name:  "synthwatch",
		Usage: "trigger synthetic tests from CI and wait for their results",
		Description: "synthwatch triggers HTTP/API checks and headless browser checks " +
			"hosted by an observability backend, polls for their outcomes, and reports a " +
			"consolidated verdict suitable for failing or passing a CI job.",
		Commands:    cmd.RootCommands,
		Flags:       cmd.RootFlags,
		HideVersion: true,
		Before:      setupLogging,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) error {
	if logging.IsTerminal() {
		logging.Console()
	}
	logging.SetLevel(logLevel(c))
	return nil
}

// logLevel picks the verbosity: an explicit LOG_LEVEL wins over the -v
// flags, and an unparseable value falls back to the flags instead of
// aborting the run.
func logLevel(c *cli.Context) zapcore.Level {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
		fmt.Fprintf(os.Stderr, "unknown LOG_LEVEL %q, falling back to flags\n", v)
	}
	if c.Bool("v") || c.Bool("vv") {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}
