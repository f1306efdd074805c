package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"regroup-hq/regroup/pkg/cli"
	"regroup-hq/regroup/pkg/telemetry/health"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionFlags struct {
	output string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE:  printVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

func printVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(versionFlags.output)
	if err != nil {
		return cli.NewConfigError("--output", err.Error())
	}

	w := stdout(cmd)
	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(w, health.NewVersionInfo(Version, GitCommit, BuildDate))
	}

	fmt.Fprintf(w, "regroup %s\n", Version)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
