package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sincro/ngscan/internal/cli/ui"
	"github.com/sincro/ngscan/internal/schema"
	"github.com/sincro/ngscan/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <filePath>",
		Short: "Re-extract a component or module whenever its sources change",
		Long: `Extract a component or module file, then keep watching the project root.

When a watched file changes, the changed units and every unit importing
them are reparsed and the definition is written again. Changes that do not
touch any unit the last extraction read are ignored.

Watched files and the debounce delay come from the watch section of
ngscan.yml (default: *.ts, ignoring *.spec.ts, 100ms).

Examples:
  ngscan watch src/app/app.module.ts
  ngscan watch src/app/user-card.component.ts --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			path := args[0]
			target, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", path, err)
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			run := func() {
				start := time.Now()
				def, err := s.extract(path)
				if err != nil {
					_ = s.report(errOut, path, err)
					return
				}
				written, err := s.write(def)
				if err != nil {
					fmt.Fprint(errOut, ui.Warning(fmt.Sprintf("Could not write definition: %v", err), nil, s.noColor))
					return
				}
				ui.WriteSuccess(out, fmt.Sprintf("Wrote %s (%d components) in %s",
					written, len(schema.Summarize(def)), time.Since(start).Round(time.Millisecond)), s.noColor)

				// Units this run did not reach are dropped; they reparse on demand.
				if pruned := s.project.Prune(time.Since(start)); len(pruned) > 0 {
					s.log.Debug("evicted units not used by the last extraction", zap.Int("units", len(pruned)))
				}
			}

			run()

			watcher, err := watch.NewFileWatcher(s.project.Root(), watch.Options{
				Patterns: s.cfg.Watch.Patterns,
				Ignored:  s.cfg.Watch.Ignore,
				Delay:    time.Duration(s.cfg.Watch.DelayMS) * time.Millisecond,
				Logger:   s.log.Named("watch"),
			}, func(files []string) error {
				var dropped []string
				touchedTarget := false
				for _, file := range files {
					touchedTarget = touchedTarget || file == target
					paths, err := s.project.Refresh(file)
					if err != nil {
						fmt.Fprint(errOut, ui.Warning(fmt.Sprintf("Could not reload %s: %v", file, err), nil, s.noColor))
						continue
					}
					dropped = append(dropped, paths...)
				}
				// The target itself may not be loaded yet after a failed run.
				if len(dropped) == 0 && !touchedTarget {
					s.log.Debug("changes did not affect any loaded unit", zap.Strings("files", files))
					return nil
				}
				s.log.Info("sources changed",
					zap.Int("invalidated", len(dropped)),
					zap.Int("cached", s.project.Cached()))
				run()
				return nil
			})
			if err != nil {
				return err
			}

			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer watcher.Stop()

			fmt.Fprint(out, ui.Info(fmt.Sprintf("Watching %s for changes", s.project.Root()), s.noColor))
			color.New(color.FgYellow).Fprintln(out, "Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			fmt.Fprintln(out, "Stopped watching.")
			return nil
		},
	}

	return cmd
}
