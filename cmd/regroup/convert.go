package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"regroup-hq/regroup/pkg/cli"
	"regroup-hq/regroup/pkg/transform"
)

var convertFlags struct {
	output string
	out    string
}

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a configuration file",
	Long: `Convert a Clash configuration with the configured region table and rule list.

The input is read from the named file, or from stdin when the file is "-"
or omitted. JSON and YAML are both accepted. The result is written as YAML
unless the input file ends in .json or --output says otherwise.

A document without proxies, proxy-groups and rules is written unchanged.

Examples:
  # Convert a file to stdout
  regroup convert clash.yaml

  # Convert stdin to a file as JSON
  cat clash.yaml | regroup convert --output json --out clash.json

  # Use a rule list from disk
  REGROUP_RULESET_SOURCE=file REGROUP_RULESET_PATH=openai.list regroup convert clash.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: convertFile,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "output format: yaml, json (defaults to the input format)")
	convertCmd.Flags().StringVar(&convertFlags.out, "out", "", "write the result to this file instead of stdout")
}

func convertFile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	input := "-"
	if len(args) == 1 {
		input = args[0]
	}
	data, err := readInput(cmd, input)
	if err != nil {
		return cli.NewCommandError("convert", err)
	}

	format, err := outputFormat(convertFlags.output, input)
	if err != nil {
		return err
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return cli.NewCommandError("convert", err)
	}

	transformer, err := newTransformer(&cfg.Convert)
	if err != nil {
		return err
	}
	source, err := newSource(&cfg.Ruleset, nil)
	if err != nil {
		return err
	}
	store, err := newStore(cfg, source, logger, nil)
	if err != nil {
		return cli.NewCommandError("convert", err)
	}
	set, err := store.Reload(context.Background())
	if err != nil {
		return cli.NewCommandError("convert", fmt.Errorf("failed to load rule set: %w", err))
	}

	out, summary, err := transformer.ConvertWithSummary(doc, set.GroupNames(), set.Lines())
	if err != nil {
		return cli.NewCommandError("convert", err)
	}
	if summary.PassThrough {
		logger.Warn("document lacks proxies, proxy-groups or rules; written unchanged")
	} else {
		logger.Info("configuration converted",
			"proxies", summary.Proxies,
			"regions", len(summary.Regions),
			"rules_added", summary.RulesAdded,
		)
	}

	var w io.Writer = stdout(cmd)
	if convertFlags.out != "" {
		f, err := os.Create(convertFlags.out)
		if err != nil {
			return cli.NewCommandError("convert", err)
		}
		defer f.Close()
		w = f
	}

	if err := cli.NewFormatter(format).FormatTo(w, out); err != nil {
		return cli.NewCommandError("convert", fmt.Errorf("failed to write result: %w", err))
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin(cmd))
	}
	return os.ReadFile(path)
}

// outputFormat resolves --output, falling back to the input extension.
func outputFormat(flag, input string) (cli.OutputFormat, error) {
	if flag == "" {
		if strings.EqualFold(filepath.Ext(input), ".json") {
			return cli.FormatJSON, nil
		}
		return cli.FormatYAML, nil
	}
	format, err := cli.ParseOutputFormat(flag)
	if err != nil {
		return "", cli.NewConfigError("--output", err.Error())
	}
	if format == cli.FormatText {
		return "", cli.NewConfigError("--output", "documents can only be written as yaml or json")
	}
	return format, nil
}

// decodeDocument accepts a YAML mapping, a JSON object, or the
// {"content": ...} envelope of the HTTP API. JSON is read as YAML so that
// numbers decode as int or float64 and are written back unquoted.
func decodeDocument(data []byte) (transform.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	var doc transform.Document
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("input must be a mapping")
	}
	if content, ok := doc["content"].(map[string]any); ok && len(doc) == 1 {
		return transform.Document(content), nil
	}
	return doc, nil
}
