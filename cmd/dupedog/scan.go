package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ivoronin/dupedog/internal/cache"
	"github.com/ivoronin/dupedog/internal/config"
	"github.com/ivoronin/dupedog/internal/logging"
	"github.com/ivoronin/dupedog/internal/pipeline"
	"github.com/ivoronin/dupedog/internal/progress"
)

// scanOptions holds CLI flags for the scan command.
type scanOptions struct {
	minSizeStr   string
	scanHidden   bool
	scanImages   bool
	scanVideos   bool
	scanZips     bool
	workers      int
	cacheFile    string
	noProgress   bool
	jsonProgress bool
	verbose      bool
}

// newScanCmd creates the scan subcommand.
func newScanCmd() *cobra.Command {
	opts := &scanOptions{
		minSizeStr: "1",
		scanImages: true,
		scanVideos: true,
	}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Find byte-identical duplicate files",
		Long: `Scans one or more directory trees and reports groups of files that are
byte-identical to each other. Nothing is deleted or modified - the
result is a JSON report of duplicate groups a caller can act on.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.minSizeStr, "min-size", "m", opts.minSizeStr, "Minimum file size (e.g., 100, 1K, 10M, 1G)")
	cmd.Flags().BoolVar(&opts.scanHidden, "hidden", false, "Include hidden files and directories")
	cmd.Flags().BoolVar(&opts.scanImages, "images", true, "Include image files")
	cmd.Flags().BoolVar(&opts.scanVideos, "videos", true, "Include video files")
	cmd.Flags().BoolVar(&opts.scanZips, "zips", false, "Include archive files")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Path to hash cache file (empty disables caching)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the terminal progress bar")
	cmd.Flags().BoolVar(&opts.jsonProgress, "json-progress", false, "Emit newline-framed JSON progress events to stderr instead of a bar")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug-level logging")

	return cmd
}

// runScan resolves configuration, opens the cache, runs the pipeline
// and prints the resulting ScanResult as JSON on stdout.
func runScan(cmd *cobra.Command, paths []string, opts *scanOptions) error {
	minSize, err := parseSize(opts.minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --min-size: %w", err)
	}

	overrides := config.Overrides{
		ScanHidden: flagOverride(cmd, "hidden", opts.scanHidden),
		ScanImages: flagOverride(cmd, "images", opts.scanImages),
		ScanVideos: flagOverride(cmd, "videos", opts.scanVideos),
		ScanZips:   flagOverride(cmd, "zips", opts.scanZips),
	}
	if cmd.Flags().Changed("min-size") {
		overrides.MinFileSize = &minSize
	}
	if cmd.Flags().Changed("workers") {
		overrides.Workers = &opts.workers
	}
	if cmd.Flags().Changed("cache-file") {
		overrides.CachePath = &opts.cacheFile
	}

	cfg := config.NewResolver().Resolve(paths, overrides)

	logger := logging.New(opts.verbose)
	defer logger.Sync()

	hashCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = hashCache.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errs := make(chan error, 100)
	go logging.DrainErrors(logger, errs)
	defer close(errs)

	progressCh, wait := startProgressConsumer(opts)

	result, err := pipeline.StartScan(ctx, cfg, progress.Sink(progressCh), hashCache, errs)
	close(progressCh)
	wait()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// flagOverride returns a pointer to value if the named flag was
// explicitly set on the command line, or nil otherwise, so an unset
// CLI flag never clobbers an environment or file setting.
func flagOverride(cmd *cobra.Command, name string, value bool) *bool {
	if cmd.Flags().Changed(name) {
		v := value
		return &v
	}
	return nil
}

// startProgressConsumer wires up either a terminal bar or a JSONL
// writer, draining events on its own goroutine. The caller owns the
// returned channel and must close it once the pipeline returns; wait
// blocks until the consumer goroutine has drained it fully.
func startProgressConsumer(opts *scanOptions) (chan progress.Event, func()) {
	ch := make(chan progress.Event, 16)
	done := make(chan struct{})

	if opts.jsonProgress {
		go func() {
			_ = progress.JSONLWriter(ch, os.Stderr)
			close(done)
		}()
		return ch, func() { <-done }
	}

	if opts.noProgress {
		go func() {
			for range ch {
			}
			close(done)
		}()
		return ch, func() { <-done }
	}

	go func() {
		bar := progress.New(true, -1)
		for ev := range ch {
			bar.Set(ev.Current)
		}
		close(done)
	}()
	return ch, func() { <-done }
}
