package main

import (
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/internal/logging"
	"github.com/goliatone/go-schemaform/pkg/orchestrator"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// flags are shared by every subcommand.
type flags struct {
	logLevel  string
	logJSON   bool
	format    string
	formID    string
	modelPath string
	presets   []string
}

// app carries the parsed flags and the logger into the subcommands.
type app struct {
	flags
	logger *charmlog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	f := &a.flags

	root := &cobra.Command{
		Use:           "schemaform",
		Short:         "Render, fill and serve forms described by JSON, YAML or OpenAPI schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Config{
				Level:      f.logLevel,
				Output:     cmd.ErrOrStderr(),
				JSON:       f.logJSON,
				Prefix:     "schemaform",
				TimeFormat: "15:04:05",
			})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVar(&f.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	persistent.BoolVar(&f.logJSON, "log-json", false, "emit logs as JSON")
	persistent.StringVar(&f.format, "format", "", "schema format adapter (detected when empty)")
	persistent.StringVar(&f.formID, "form", "", "form id inside a multi-form document such as an OpenAPI operation id")
	persistent.StringVar(&f.modelPath, "model", "", "JSON file with the initial model")
	persistent.StringArrayVar(&f.presets, "preset", nil, "JSON or YAML preset applied to the schema (repeatable)")

	root.AddCommand(
		renderCmd(a),
		promptCmd(a),
		serveCmd(a),
		formsCmd(a),
		lintCmd(a),
	)

	return root
}

// orchestrator builds an orchestrator with the preset transformers named on
// the command line.
func (a *app) orchestrator(extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	options := []orchestrator.Option{orchestrator.WithLogger(a.logger)}
	for _, path := range a.presets {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", path, err)
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}
	return orchestrator.New(append(options, extra...)...), nil
}

// request turns a schema reference and the shared flags into a request.
func (a *app) request(ref string) (orchestrator.Request, error) {
	source, err := schema.ParseSource(ref)
	if err != nil {
		return orchestrator.Request{}, err
	}
	model, err := loadModel(a.modelPath)
	if err != nil {
		return orchestrator.Request{}, err
	}
	return orchestrator.Request{
		Source: source,
		Format: strings.TrimSpace(a.format),
		FormID: strings.TrimSpace(a.formID),
		Model:  model,
	}, nil
}

func loadModel(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var model map[string]any
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	return model, nil
}
