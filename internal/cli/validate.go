package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/batch"
	"github.com/modkit/swfpatch/internal/patchdoc"
)

// ValidationResult holds validation results for one document.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var isBatch bool

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a patch document or batch configuration",
		Long: `Validate a patch document (or, with --batch, a batch configuration)
against its schema without touching any asset files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], isBatch, cmd)
		},
	}
	cmd.Flags().BoolVar(&isBatch, "batch", false, "validate a batch configuration instead of a patch document")
	return cmd
}

func runValidate(opts *RootOptions, path string, isBatch bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	kind := "patch"
	var err error
	if isBatch {
		kind = "batch"
		_, err = batch.ParseConfigFile(path)
	} else {
		_, err = patchdoc.ParseFile(path)
	}
	if err != nil {
		if apperr.Is(err, apperr.CodeIO) {
			_ = formatter.Error(string(apperr.CodeIO), err.Error(), nil)
			return WrapExitError(ExitCommandError, string(apperr.CodeIO), err)
		}
		if formatter.Format == "json" {
			result := ValidationResult{Valid: false, Kind: kind, Path: path, Error: err.Error()}
			_ = formatter.Error(string(apperr.CodeOf(err)), err.Error(), result)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", err.Error())
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Kind: kind, Path: path})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s document valid\n", kind)
	return nil
}
