package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/synthwatch/synthwatch/pkg/api"
	"github.com/synthwatch/synthwatch/pkg/engine"
	"github.com/synthwatch/synthwatch/pkg/logging"
	"github.com/synthwatch/synthwatch/pkg/reporters"
)

// RunCommand is the specification of the `run` command.
var RunCommand = cli.Command{
	Name:   "run",
	Usage:  "trigger synthetic tests and wait for their results",
	Action: runCmd,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "public-id",
			Aliases: []string{"p"},
			Usage:   "public id of a test to trigger; repeatable (bypasses suite files)",
		},
		&cli.StringFlag{
			Name:    "files",
			Aliases: []string{"f"},
			Usage:   "glob `PATTERN` locating test suite files",
		},
		&cli.StringSliceFlag{
			Name:  "override",
			Usage: "test override as `key=value`; repeatable, applied to every triggered test",
		},
		&cli.BoolFlag{
			Name:  "fail-on-critical-errors",
			Usage: "fail the run when a result carries a critical error (unhealthy probe, degraded backend)",
		},
		&cli.BoolFlag{
			Name:  "fail-on-timeout",
			Usage: "fail the run when a result times out instead of reporting it as passed",
		},
		&cli.Int64Flag{
			Name:  "polling-timeout",
			Usage: "default per-test polling budget in `MILLISECONDS`",
		},
		&cli.StringFlag{
			Name:  "junit-report",
			Usage: "write a JUnit XML report to `FILE`",
		},
		&cli.StringFlag{
			Name:  "trigger-app",
			Usage: "identifier of the integration surface invoking the trigger",
		},
	},
}

func runCmd(c *cli.Context) error {
	ctx, cancel := context.WithCancel(ProcessContext())
	defer cancel()

	cfg, err := setupConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	override, err := parseOverrides(c.StringSlice("override"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if override != nil {
		if err := api.MergeOverrides(override, &cfg.Global); err != nil {
			return cli.Exit(err.Error(), 2)
		}
		cfg.Global = *override
	}

	cl, err := setupClient(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer cl.Close()

	rep := reporters.NewMulti(reporters.NewConsole(os.Stdout))
	if path := c.String("junit-report"); path != "" {
		rep.Add(reporters.NewJUnit(path))
	}

	engine.SetTriggerApp(cfg.TriggerApp)

	summary, err := engine.New(cl, cfg, rep, nil).Run(ctx)
	if err != nil {
		logging.S().Errorw("run failed", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	if summary.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
