package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driving"
	"github.com/opsintel-labs/opsintel/internal/logger"
)

// debounceDelay batches bursts of filesystem events (an rsync drop
// touches many files) into one run.
const debounceDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the staging directory and ingest continuously",
	Long: `Runs the ingestion pipeline whenever new artifacts land in the
staging directory, and on a fixed interval as a safety net for events
the watcher misses. Stops on SIGINT or SIGTERM.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	index, err := openIndex()
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	defer embedder.Close()

	pipeline, err := newPipeline(tracker, index, embedder)
	if err != nil {
		return err
	}

	watcher, err := newStagingWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (interval %s). Ctrl-C to stop.\n", cfg.StagingRoot, cfg.WatchInterval)

	// Initial pass picks up anything already staged.
	runOnce(ctx, cmd, pipeline)

	ticker := time.NewTicker(cfg.WatchInterval)
	defer ticker.Stop()

	var debounce *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopping.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("fs event: %s", event)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-trigger:
			runOnce(ctx, cmd, pipeline)

		case <-ticker.C:
			runOnce(ctx, cmd, pipeline)
		}
	}
}

// newStagingWatcher watches the per-type staging subdirectories,
// creating them first so the watch does not fail on a fresh tree.
func newStagingWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	for _, docType := range []domain.DocType{
		domain.DocTypeMarkdown,
		domain.DocTypeCSV,
		domain.DocTypeChat,
		domain.DocTypeEmail,
		domain.DocTypePDF,
	} {
		dir := filepath.Join(cfg.StagingRoot, string(docType))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return watcher, nil
}

func runOnce(ctx context.Context, cmd *cobra.Command, pipeline driving.PipelineRunner) {
	report, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			logger.Debug("run already in progress, skipping")
			return
		}
		cmd.PrintErrf("run failed: %v\n", err)
		return
	}
	if report.Registered+report.Completed+report.Failed > 0 {
		printReport(cmd, report)
	}
}
