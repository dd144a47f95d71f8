package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/diff"
)

// NewPatchCommand creates the patch command group for binary diffs.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Create and apply binary patches between asset versions",
	}
	cmd.AddCommand(newPatchCreateCommand(rootOpts))
	cmd.AddCommand(newPatchApplyCommand(rootOpts))
	return cmd
}

func newPatchCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:           "create <original> <edited>",
		Short:         "Create a binary patch turning the original into the edited file",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := filepath.Base(args[0])
			out, err := diff.CreatePatchFile(diff.Exec{}, args[0], args[1], outputDir, name)
			return reportPatch(rootOpts, cmd, out, err)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory for the generated patch file")
	return cmd
}

func newPatchApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:           "apply <target> <patch>",
		Short:         "Apply a binary patch to a target file",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := filepath.Base(args[0])
			out, err := diff.ApplyPatchFile(diff.Exec{}, args[0], args[1], outputDir, name)
			return reportPatch(rootOpts, cmd, out, err)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "directory for the patched file")
	return cmd
}

func reportPatch(opts *RootOptions, cmd *cobra.Command, outPath string, err error) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err != nil {
		return failPipeline(formatter, err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"output": outPath})
	}
	fmt.Fprintf(formatter.Writer, "✓ wrote %s\n", outPath)
	return nil
}
