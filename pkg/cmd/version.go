package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/synthwatch/synthwatch/pkg/version"
)

var VersionCommand = cli.Command{
	Name:   "version",
	Usage:  "print version numbers",
	Action: versionCommand,
}

func versionCommand(c *cli.Context) error {
	commit := version.GitCommit
	if len(commit) > 10 {
		commit = commit[:10]
	}
	if commit == "" {
		fmt.Printf("synthwatch %s\n", version.Version)
	} else {
		fmt.Printf("synthwatch %s (commit %s)\n", version.Version, commit)
	}
	return nil
}
