package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/ventas-extractor/internal/batch"
	"github.com/zombor/ventas-extractor/internal/extraction"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one batch and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Fprintln(stdout, version)
			return 0
		}
	}

	fs := ff.NewFlagSet("extractor-batch")
	var (
		inputDir       = fs.StringLong("input", "archivos", "Directory holding the .txt and .pdf reports")
		outputPath     = fs.StringLong("output", "ventas.xlsx", "Spreadsheet to write")
		logPath        = fs.StringLong("log", "", "File that receives one line per processed report (optional)")
		categoriesPath = fs.StringLong("categories", "", "YAML category table (default: built-in table)")
		workers        = fs.IntLong("workers", 1, "Reports processed at once")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("EXTRACTOR_BATCH"),
	); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	table, err := extraction.LoadCategoryTable(*categoriesPath)
	if err != nil {
		slog.Error("Failed to load category table", "path", *categoriesPath, "error", err)
		return 1
	}

	var logWriter io.Writer
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Error("Failed to open log file", "path", *logPath, "error", err)
			return 1
		}
		defer f.Close()
		logWriter = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := batch.Run(ctx, batch.Options{
		InputDir:   *inputDir,
		OutputPath: *outputPath,
		Log:        logWriter,
		Workers:    *workers,
		Engine:     extraction.NewEngine(table),
	})
	if err != nil {
		slog.Error("Batch run failed", "error", err)
		return 1
	}

	for _, r := range summary.Results {
		if r.Err != nil {
			fmt.Fprintf(stdout, "failed    %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(stdout, "processed %s\n", r.Path)
	}
	fmt.Fprintf(stdout, "%d processed, %d failed, written to %s\n", summary.Processed, summary.Failed, summary.Output)
	return 0
}
