package commands

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/sincro/ngscan/internal/schema"
)

// dumpConfig prints definitions without addresses so output is stable
// between runs.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// NewDumpCommand creates the dump command
func NewDumpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <filePath>",
		Short: "Print the raw definition tree of a component or module",
		Long: `Print the in-memory definition extracted from a file, field by field.

Useful for checking what the resolver produced for a type before it is
serialized. Nothing is written to disk. A previously written JSON
definition (.json or .json.gz) is decoded and printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := args[0]; strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".json.gz") {
				def, err := schema.ReadFromFile(path)
				if err != nil {
					return err
				}
				dumpConfig.Fdump(cmd.OutOrStdout(), def)
				return nil
			}

			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			def, err := s.extract(args[0])
			if err != nil {
				return s.report(cmd.ErrOrStderr(), args[0], err)
			}

			dumpConfig.Fdump(cmd.OutOrStdout(), def)
			return nil
		},
	}
}
