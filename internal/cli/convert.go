package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/codec"
)

// NewConvertCommand creates the convert command group.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between binary assets and structural documents",
	}
	cmd.AddCommand(newConvertToJSONCommand(rootOpts))
	cmd.AddCommand(newConvertToBinaryCommand(rootOpts))
	return cmd
}

func newConvertToJSONCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "to-json <input> <output>",
		Short:         "Convert a binary asset to a structural document",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, cmd, args[0], args[1], codec.ConvertToStructural)
		},
	}
}

func newConvertToBinaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "to-swf <input> <output>",
		Short:         "Convert a structural document back to a binary asset",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, cmd, args[0], args[1], codec.ConvertFromStructural)
		},
	}
}

func runConvert(opts *RootOptions, cmd *cobra.Command, input, output string, convert func(string, string) error) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err := convert(input, output); err != nil {
		_ = formatter.Error("CODEC_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "conversion failed", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"input": input, "output": output})
	}
	fmt.Fprintf(formatter.Writer, "✓ wrote %s\n", output)
	return nil
}
