package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	ingestExtract bool
	ingestWorkers int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or directory",
	Long: `Parses, cleans, chunks, embeds, and stores documents.

A directory is walked for supported files, which are ingested in
parallel. Files that fail to parse are still registered with a
placeholder chunk so they remain visible in listings.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestExtract, "extract", "x", false, "extract the document ontology after ingestion")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 4, "parallel ingestions for directories")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx := context.Background()
	if info.IsDir() {
		return ingestDirectory(ctx, cmd, path)
	}
	return ingestFile(ctx, cmd, path)
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	res, err := ingestService.IngestFile(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if res.Fallback {
		cmd.Printf("Ingested %s with a fallback chunk (parsing failed): %s\n", res.Filename, res.DocID)
	} else {
		cmd.Printf("Ingested %s: %d chunks, %d chars (%s)\n", res.Filename, res.ChunkCount, res.CharCount, res.DocID)
	}

	if ingestExtract {
		if ontologyService == nil {
			return errors.New("ontology service not configured")
		}
		ont, err := ontologyService.ExtractAndStore(ctx, res.DocID, nil)
		if err != nil {
			return fmt.Errorf("ontology extraction failed: %w", err)
		}
		cmd.Printf("Extracted %d keywords.\n", len(ont.Keywords))
	}

	return nil
}

func ingestDirectory(ctx context.Context, cmd *cobra.Command, dir string) error {
	files, err := collectSupportedFiles(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}

	cmd.Printf("Ingesting %d files...\n", len(files))

	workers := ingestWorkers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu     sync.Mutex
		failed int
	)
	for _, path := range files {
		g.Go(func() error {
			res, err := ingestService.IngestFile(ctx, path)
			if err != nil {
				mu.Lock()
				failed++
				cmd.Printf("  FAILED %s: %v\n", path, err)
				mu.Unlock()
				return nil
			}

			line := fmt.Sprintf("  %s: %d chunks", res.Filename, res.ChunkCount)
			if res.Fallback {
				line += " (fallback)"
			}
			if ingestExtract && ontologyService != nil {
				if _, err := ontologyService.ExtractAndStore(ctx, res.DocID, nil); err != nil {
					line += fmt.Sprintf(", extraction failed: %v", err)
				}
			}

			mu.Lock()
			cmd.Println(line)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cmd.Printf("Done: %d ingested, %d failed.\n", len(files)-failed, failed)
	return nil
}

// collectSupportedFiles walks dir and returns paths with supported
// extensions, skipping hidden directories.
func collectSupportedFiles(dir string) ([]string, error) {
	supported := make(map[string]bool)
	for _, ext := range ingestService.SupportedExtensions() {
		supported[ext] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if supported[extOf(path)] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// extOf returns the lowercased extension without the leading dot,
// matching the form SupportedExtensions reports.
func extOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
