package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"regroup-hq/regroup/pkg/cli"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "regroup",
	Short: "Regroup - Clash configuration rewriter",
	Long: `Regroup rewrites Clash proxy configurations.

It orders proxies by region and rate, adds a url-test group per region,
adds selector groups that list every group and prepends a rule list routed
to them. Conversion is available as an HTTP service (regroup run) and as a
command (regroup convert).

Without --config the built-in defaults are used; REGROUP_* environment
variables override both.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// stdout returns the command's output writer. Tests call the run functions
// with a nil command.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}
