// Package batch extracts every receipt in a directory and writes the
// records to a spreadsheet, logging one line per file.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/ventas-extractor/internal/extraction"
	"github.com/zombor/ventas-extractor/internal/spreadsheet"
)

// inputExtensions are the receipt files picked up from the input directory
var inputExtensions = map[string]struct{}{
	".txt": {},
	".pdf": {},
}

// Options configures a batch run
type Options struct {
	InputDir   string
	OutputPath string
	// Log receives one line per processed file. Nil discards it.
	Log io.Writer
	// Workers bounds how many files are processed at once; below 1 means 1
	Workers int
	// Engine defaults to one with the built-in category table
	Engine *extraction.Engine
}

// FileResult is the outcome of one input file
type FileResult struct {
	Path   string
	Record extraction.Record
	Err    error
}

// Summary describes a finished batch run
type Summary struct {
	Results   []FileResult
	Processed int
	Failed    int
	Output    string
}

// ListInputs returns the receipt files of dir sorted by name
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := inputExtensions[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes every input file, writes the log lines and the spreadsheet.
// Results keep the input order whatever the number of workers.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	engine := opts.Engine
	if engine == nil {
		engine = extraction.NewEngine(nil)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logOut := opts.Log
	if logOut == nil {
		logOut = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	paths, err := ListInputs(opts.InputDir)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processFile(engine, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("processing inputs: %w", err)
	}

	summary := &Summary{Results: results, Output: opts.OutputPath}
	records := make([]extraction.Record, len(results))
	for i, r := range results {
		records[i] = r.Record
		name := filepath.Base(r.Path)
		if r.Err != nil {
			summary.Failed++
			logger.Error("failed", "file", name, "error", r.Err)
			continue
		}
		summary.Processed++
		logger.Info("processed", "file", name)
	}

	if err := spreadsheet.Save(opts.OutputPath, records); err != nil {
		return summary, fmt.Errorf("writing spreadsheet: %w", err)
	}
	return summary, nil
}

// processFile never fails the batch: read and decode errors are reported
// on the result next to a record holding only the file name.
func processFile(engine *extraction.Engine, path string) FileResult {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Record: engine.NewRecord(name), Err: fmt.Errorf("reading file: %w", err)}
	}
	text, err := extraction.DecodeText(data, "", name)
	if err != nil {
		return FileResult{Path: path, Record: engine.NewRecord(name), Err: err}
	}
	rec, err := engine.Process(text, name)
	return FileResult{Path: path, Record: rec, Err: err}
}
