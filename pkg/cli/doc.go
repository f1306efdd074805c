/*
Package cli provides command-line interface utilities for regroup.

The cli package includes output formatters, error types with exit codes and
signal handling used by the regroup command.

Output Formatting:

Command results can be printed as text, JSON or YAML:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, set.Lines()); err != nil {
		return err
	}

Exit Codes:

ExitCode maps command errors to process exit codes; configuration
problems exit with 2:

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
