package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var watchDebounce = 500 * time.Millisecond

var watchCmd = pipelineCommand(&cobra.Command{
	Use:   "watch <file>",
	Short: "Prepare a document and prepare it again whenever it changes",
	Long: `Prepares the document, then watches it and prepares it again each time
it is saved. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
})

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watchDebounce, "quiet period before preparing again")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rag, err := requireRAG()
	if err != nil {
		return err
	}

	resolved, err := filesystem.ResolveFile(args[0])
	if err != nil {
		return err
	}
	path, err := filepath.Abs(resolved)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", resolved, err)
	}

	prepareAndReport(cmd, rag, path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than write it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", path)

	return watchLoop(cmd.Context(), watcher.Events, watcher.Errors, path, watchDebounce, func() {
		prepareAndReport(cmd, rag, path)
	})
}

// watchLoop calls onChange once events for path have been quiet for debounce.
// It returns nil when ctx is done or the event channel closes.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	path string,
	debounce time.Duration,
	onChange func(),
) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !isChange(event, path) {
				continue
			}
			logger.Debug("watch: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("watch: %v", err)
				continue
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

// isChange reports whether event means path has new content.
func isChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		logger.Warn("watch: %s was removed; waiting for it to reappear", path)
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func prepareAndReport(cmd *cobra.Command, rag driving.RAGService, path string) {
	report, err := rag.Prepare(cmd.Context(), path)
	if err != nil {
		cmd.PrintErrf("Prepare failed: %v\n", err)
		return
	}
	cmd.Printf("[%s] Prepared %d chunks in %s\n",
		time.Now().Format(time.TimeOnly), report.Chunks, report.Duration.Round(time.Millisecond))
}
