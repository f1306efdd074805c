package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regroup-hq/regroup/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and defaults
applied, and report every invalid field.

Examples:
  regroup config validate --config /etc/regroup/config.yaml`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configShowCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	w := stdout(cmd)
	if _, err := loadConfig(); err != nil {
		fieldErrs := cli.ConfigErrors(err)
		if len(fieldErrs) == 0 {
			return err
		}
		fmt.Fprintf(w, "✗ Configuration invalid (%d errors)\n", len(fieldErrs))
		for _, fe := range fieldErrs {
			fmt.Fprintf(w, "  - %s: %s\n", fe.Field, fe.Message)
		}
		return err
	}

	name := cfgFile
	if name == "" {
		name = "built-in defaults"
	}
	fmt.Fprintf(w, "✓ Configuration valid (%s)\n", name)
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return cli.NewFormatter(cli.FormatYAML).FormatTo(stdout(cmd), cfg)
}
