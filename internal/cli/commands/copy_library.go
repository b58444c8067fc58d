package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/sincro/ngscan/internal/cli/ui"
	"github.com/sincro/ngscan/internal/utils"
)

// confirm asks a yes/no question on the terminal. Tests replace it.
var confirm = func(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// NewCopyLibraryCommand creates the copy-library command
func NewCopyLibraryCommand(opts *rootOptions) *cobra.Command {
	var (
		dest string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "copy-library <libraryPath>",
		Short: "Copy an Angular library tree for testing",
		Long: `Copy an Angular library directory, recursively, to a destination used as
a test fixture. Files already at the destination are overwritten; other
files there are kept.

Examples:
  ngscan copy-library ../design-system/projects/common
  ngscan copy-library ../design-system/projects/common --dest ./fixtures/common --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve library path: %w", err)
			}
			dst, err := filepath.Abs(dest)
			if err != nil {
				return fmt.Errorf("failed to resolve destination: %w", err)
			}

			info, err := os.Stat(src)
			if err != nil {
				return fmt.Errorf("library path %s: %w", src, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("library path %s is not a directory", src)
			}
			if utils.Within(src, dst) {
				return fmt.Errorf("destination %s is inside the library %s", dst, src)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(dst); err == nil && !yes {
				ok, err := confirm(fmt.Sprintf("%s already exists. Copy into it anyway?", dst))
				if err != nil {
					return fmt.Errorf("failed to confirm: %w", err)
				}
				if !ok {
					fmt.Fprintln(out, "Copy cancelled.")
					return nil
				}
			}

			entries, err := utils.ListTree(src)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", src, err)
			}

			fmt.Fprintf(out, "Copying library from %s to %s\n", src, dst)
			err = ui.WithProgress(cmd.ErrOrStderr(), "Copying library", len(entries), opts.noColor, func(bar *ui.ProgressBar) error {
				for _, rel := range entries {
					if err := utils.CopyEntry(filepath.Join(src, rel), filepath.Join(dst, rel)); err != nil {
						return err
					}
					bar.Add(1)
				}
				return nil
			})
			if err != nil {
				return err
			}

			ui.WriteSuccess(out, fmt.Sprintf("Copied %d files.", len(entries)), opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "./test/library", "Destination directory")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Copy without asking when the destination exists")

	return cmd
}
