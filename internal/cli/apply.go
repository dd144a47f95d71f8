package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/archive"
	"github.com/modkit/swfpatch/internal/codec"
	"github.com/modkit/swfpatch/internal/engine"
	"github.com/modkit/swfpatch/internal/patchdoc"
)

// ApplyResult reports one successful apply.
type ApplyResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		inputPath   string
		configPath  string
		outputPath  string
		optionsPath string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a patch document to a structural asset file",
		Long: `Apply a patch document to one structural asset file and write the
result. The input may be a plain file path or an "archive//inner" reference
into an archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, inputPath, configPath, outputPath, optionsPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "structural asset file, or archive//inner reference (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "patch document path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVar(&optionsPath, "options", "", "YAML shape-builder tuning file")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runApply(opts *RootOptions, inputPath, configPath, outputPath, optionsPath string, cmd *cobra.Command) error {
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

	doc, err := patchdoc.ParseFile(configPath)
	if err != nil {
		return failPipeline(formatter, err)
	}

	data, err := readInput(inputPath)
	if err != nil {
		return failPipeline(formatter, err)
	}

	c := codec.JSON()
	movie, err := c.Decode(data)
	if err != nil {
		return failPipeline(formatter, apperr.Wrap(apperr.CodeCodec, err, "decode asset"))
	}

	formatter.VerboseLog("applying %d transparency, %d replacement, %d modification instruction(s)",
		len(doc.Transparent), len(doc.Replacements), len(doc.Modifications))

	if _, err := engine.Apply(movie, doc, engine.Options{Geometry: geometry}); err != nil {
		return failPipeline(formatter, err)
	}

	encoded, err := c.Encode(movie)
	if err != nil {
		return failPipeline(formatter, apperr.Wrap(apperr.CodeCodec, err, "encode asset"))
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return failPipeline(formatter, apperr.Wrap(apperr.CodeIO, err, "write output").WithPath(outputPath))
	}

	if formatter.Format == "json" {
		return formatter.Success(ApplyResult{Input: inputPath, Output: outputPath})
	}
	fmt.Fprintf(formatter.Writer, "✓ wrote %s\n", outputPath)
	return nil
}

// readInput reads a plain file or an "archive//inner" reference.
func readInput(inputPath string) ([]byte, error) {
	if combined, ok := archive.SplitCombined(inputPath); ok {
		container, err := archive.Open(combined.ArchivePath)
		if err != nil {
			return nil, err
		}
		defer container.Close()
		return container.Read(combined.InnerPath)
	}
	data, err := os.ReadFile(filepath.Clean(inputPath))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read input file").WithPath(inputPath)
	}
	return data, nil
}
