package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/cli/config"
	"github.com/sincro/ngscan/internal/cli/ui"
	"github.com/sincro/ngscan/internal/extractor"
	"github.com/sincro/ngscan/internal/project"
	"github.com/sincro/ngscan/internal/resolver"
	"github.com/sincro/ngscan/internal/schema"
	"github.com/sincro/ngscan/internal/tsproject"
)

// session bundles what an extraction command needs: the loaded config, a
// logger, the project and an extractor over it.
type session struct {
	cfg       *config.Config
	log       *zap.Logger
	project   *tsproject.Project
	extractor *extractor.Extractor
	noColor   bool
}

// newSession loads the configuration and opens the project. Configuration
// failures are printed as formatted blocks.
func newSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, opts.noColor))
		return nil, &reportedError{err: err}
	}

	log, err := config.NewLogger(cfg.Log, opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p, err := tsproject.New(cfg.Project.Root, tsproject.Options{
		BaseURL:  cfg.Project.BaseURL,
		Paths:    cfg.Project.Paths,
		TSConfig: cfg.Project.TSConfig,
		Logger:   log.Named("project"),
	})
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:       cfg,
		log:       log,
		project:   p,
		extractor: extractor.New(p, extractorOptions(cfg, log.Named("extractor"))),
		noColor:   opts.noColor,
	}, nil
}

// extractorOptions maps the configuration onto extractor options.
func extractorOptions(cfg *config.Config, log *zap.Logger) extractor.Options {
	cycles := extractor.CycleGuard
	if !cfg.Walker.CycleGuard {
		cycles = extractor.CycleUnguarded
	}

	return extractor.Options{
		ComponentAttribute: cfg.Angular.ComponentAttribute,
		ModuleAttribute:    cfg.Angular.ModuleAttribute,
		InputAttribute:     cfg.Angular.InputAttribute,
		OutputAttribute:    cfg.Angular.OutputAttribute,
		InputConstructors:  cfg.Angular.InputConstructors,
		OutputConstructors: cfg.Angular.OutputConstructors,
		Merge:              extractor.MergeStrategy(cfg.Walker.Merge),
		Cycles:             cycles,
		Resolver:           resolver.New(resolver.Options{Wrappers: cfg.Resolver.Wrappers}),
		Logger:             log,
	}
}

// Close releases the parsed sources and flushes the logger.
func (s *session) Close() {
	s.project.Close()
	_ = s.log.Sync()
}

// extract runs the extractor on path.
func (s *session) extract(path string) (schema.Definition, error) {
	return s.extractor.ExtractFile(path)
}

// write persists def per the output configuration and returns the path
// written.
func (s *session) write(def schema.Definition) (string, error) {
	format, err := schema.ParseFormat(s.cfg.Output.Format)
	if err != nil {
		return "", err
	}

	return schema.WriteToFile(def, outputPath(s.cfg.Output.Path, format), schema.WriteOptions{
		Format:   format,
		Compress: s.cfg.Output.Compress,
	})
}

// outputPath swaps a JSON or YAML extension for the one matching format.
// Other extensions are left alone.
func outputPath(path string, format schema.Format) string {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".json":
		if format == schema.FormatYAML {
			return strings.TrimSuffix(path, ext) + format.Extension()
		}
	case ".yaml", ".yml":
		if format == schema.FormatJSON {
			return strings.TrimSuffix(path, ext) + format.Extension()
		}
	}
	return path
}

// report prints an extraction failure for path as a formatted block and
// returns it marked as reported.
func (s *session) report(w io.Writer, path string, err error) error {
	switch {
	case errors.Is(err, project.ErrNotFound):
		fmt.Fprint(w, ui.FileNotFoundError(path, ui.SimilarFiles(path), s.noColor))
	case errors.Is(err, extractor.ErrNoDeclaration):
		fmt.Fprint(w, ui.NoDeclarationError(path, s.cfg.Angular.ComponentAttribute, s.cfg.Angular.ModuleAttribute, s.noColor))
	default:
		fmt.Fprint(w, ui.ExtractionError(err.Error(), nil, s.noColor))
	}
	return &reportedError{err: err}
}

// printSummary renders one table row per extracted component.
func printSummary(w io.Writer, def schema.Definition, noColor bool) {
	ui.Header(w, fmt.Sprintf("%s (%s)", def.DefinitionName(), def.DefinitionKind()), noColor)

	summaries := schema.Summarize(def)
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No components found.")
		return
	}

	table := ui.NewTable(w, []string{"Component", "Selector", "Inputs", "Primitive", "Non-primitive", "Outputs"},
		&ui.TableOptions{NoColor: noColor, RightAlign: []int{2, 3, 4, 5}})
	for _, c := range summaries {
		selector := c.Selector
		if selector == "" {
			selector = "-"
		}
		table.AddRow(c.Name, selector,
			fmt.Sprint(c.Inputs), fmt.Sprint(c.PrimitiveInputs), fmt.Sprint(c.NonPrimitiveInputs), fmt.Sprint(c.Outputs))
	}
	table.Render()
}
