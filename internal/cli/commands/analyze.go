package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sincro/ngscan/internal/cli/ui"
	"github.com/sincro/ngscan/internal/schema"
)

// NewAnalyzeCommand creates the analyze-component command
func NewAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var (
		output   string
		format   string
		compress bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:     "analyze-component <filePath>",
		Aliases: []string{"extract"},
		Short:   "Extract the inputs and outputs of a component or module",
		Long: `Extract the inputs and outputs of an Angular component or module file.

A component file yields one component definition. A module file yields a
module definition listing every component reachable through its imports.
The definition is written to the configured output file and a summary is
printed.

Examples:
  ngscan analyze-component src/app/user-card.component.ts
  ngscan extract src/app/app.module.ts --format yaml --output inputs.yaml
  ngscan extract src/app/app.module.ts --compress --quiet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			flags := cmd.Flags()
			if flags.Changed("output") {
				s.cfg.Output.Path = output
			}
			if flags.Changed("format") {
				if _, err := schema.ParseFormat(format); err != nil {
					return err
				}
				s.cfg.Output.Format = format
			}
			if flags.Changed("compress") {
				s.cfg.Output.Compress = compress
			}

			path := args[0]
			var def schema.Definition
			extract := func() error {
				var err error
				def, err = s.extract(path)
				return err
			}

			if quiet {
				err = extract()
			} else {
				err = ui.WithSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Analyzing %s", path), s.noColor, extract)
			}
			if err != nil {
				return s.report(cmd.ErrOrStderr(), path, err)
			}

			written, err := s.write(def)
			if err != nil {
				return fmt.Errorf("failed to write definition: %w", err)
			}

			if !quiet {
				out := cmd.OutOrStdout()
				printSummary(out, def, s.noColor)
				fmt.Fprintln(out)
				ui.WriteSuccess(out, fmt.Sprintf("Wrote %s", written), s.noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from config: module-inputs.json)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml")
	cmd.Flags().BoolVar(&compress, "compress", false, "Gzip the output file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only write the output file")

	return cmd
}
