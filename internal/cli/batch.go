package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/batch"
	"github.com/modkit/swfpatch/internal/engine"
	"github.com/modkit/swfpatch/internal/history"
)

// BatchResult reports a batch run.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed,omitempty"`
}

// BatchFailure names one failed entry.
type BatchFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		configPath  string
		outputDir   string
		archivePath string
		inputs      []string
		historyPath string
		optionsPath string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply a catalog of patch jobs",
		Long: `Process every entry of a batch configuration in order. Entries fail
independently: a bad entry is reported and skipped, the rest still run.
Archive-backed entries read their targets from --archive; loose-file
entries take their inputs from repeated --input name=path flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rootOpts, configPath, outputDir, archivePath, inputs, historyPath, optionsPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "batch configuration path (required)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (required)")
	cmd.Flags().StringVar(&archivePath, "archive", "", "archive file for archive-backed entries")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "name=path input mapping for a loose-file entry (repeatable)")
	cmd.Flags().StringVar(&historyPath, "history", "", "SQLite database recording per-entry outcomes")
	cmd.Flags().StringVar(&optionsPath, "options", "", "YAML shape-builder tuning file")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBatch(opts *RootOptions, configPath, outputDir, archivePath string, inputs []string, historyPath, optionsPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	geometry, err := loadGeometryOptions(optionsPath)
	if err != nil {
		_ = formatter.Error("OPTIONS", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid options file", err)
	}

	inputMap, err := parseInputFlags(inputs)
	if err != nil {
		_ = formatter.Error("FLAGS", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --input flag", err)
	}

	cfg, err := batch.ParseConfigFile(configPath)
	if err != nil {
		return failPipeline(formatter, err)
	}

	runOpts := batch.Options{
		Engine: engine.Options{Geometry: geometry},
		Inputs: inputMap,
	}
	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			_ = formatter.Error("HISTORY", err.Error(), nil)
			return WrapExitError(ExitCommandError, "open history database", err)
		}
		defer store.Close()
		runOpts.Recorder = store
	}

	result, err := batch.Run(cmd.Context(), cfg, outputDir, archivePath, runOpts)
	if err != nil {
		return failPipeline(formatter, err)
	}

	out := BatchResult{Succeeded: result.Succeeded}
	for _, f := range result.Failed {
		out.Failed = append(out.Failed, BatchFailure{Name: f.Name, Error: f.Err.Error()})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		for _, p := range out.Succeeded {
			fmt.Fprintf(formatter.Writer, "✓ %s\n", p)
		}
		for _, f := range out.Failed {
			fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", f.Name, f.Error)
		}
		fmt.Fprintf(formatter.Writer, "%d succeeded, %d failed\n", len(out.Succeeded), len(out.Failed))
	}

	if len(out.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d entr(ies) failed", len(out.Failed)))
	}
	return nil
}

// parseInputFlags turns repeated name=path flags into a map.
func parseInputFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(flags))
	for _, f := range flags {
		name, path, found := strings.Cut(f, "=")
		if !found || name == "" || path == "" {
			return nil, fmt.Errorf("expected name=path, got %q", f)
		}
		m[name] = path
	}
	return m, nil
}
