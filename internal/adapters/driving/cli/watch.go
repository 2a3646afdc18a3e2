package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	watchDebounce time.Duration
	watchExtract  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest changed files",
	Long: `Watches a directory tree and ingests supported files as they are
created or modified. Events are debounced per path, so editors that
write a file in several steps trigger a single ingestion.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVarP(&watchExtract, "extract", "x", false, "extract the document ontology after ingestion")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := addWatchTree(watcher, dir); err != nil {
		return err
	}

	supported := make(map[string]bool)
	for _, ext := range ingestService.SupportedExtensions() {
		supported[ext] = true
	}

	ctx := cmd.Context()
	cmd.Printf("Watching %s (press Ctrl+C to stop)...\n", dir)

	// One debouncer per path, dropped after its ingestion runs so the
	// map does not grow without bound.
	debouncers := make(map[string]func(f func()))
	var mu sync.Mutex

	ingest := func(path string) {
		defer func() {
			mu.Lock()
			delete(debouncers, path)
			mu.Unlock()
		}()

		res, err := ingestService.IngestFile(ctx, path)
		if err != nil {
			cmd.Printf("FAILED %s: %v\n", path, err)
			return
		}
		cmd.Printf("Ingested %s: %d chunks (%s)\n", res.Filename, res.ChunkCount, res.DocID)

		if watchExtract && ontologyService != nil {
			if _, err := ontologyService.ExtractAndStore(ctx, res.DocID, nil); err != nil {
				cmd.Printf("Extraction failed for %s: %v\n", res.Filename, err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				// New directories join the watch tree.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						cmd.Printf("Watch error: %v\n", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !supported[extOf(event.Name)] {
				continue
			}

			path := event.Name
			mu.Lock()
			bounce, ok := debouncers[path]
			if !ok {
				bounce = debounce.New(watchDebounce)
				debouncers[path] = bounce
			}
			mu.Unlock()
			bounce(func() { ingest(path) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.Printf("Watch error: %v\n", err)
		}
	}
}

// addWatchTree registers root and every non-hidden subdirectory.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
