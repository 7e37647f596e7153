package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/preyalameta02/balance-sheet-analysis/internal/parser"
)

// extract runs the extraction pipeline on one PDF and prints the record
// candidates and diagnostics as JSON. No database involved; handy for
// checking what a statement yields before uploading it.
func main() {
	vocabPath := flag.String("vocabulary", "", "metric/unit vocabulary JSON (default: built-in tables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [-vocabulary tables.json] <statement.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	vocab, err := parser.LoadVocabulary(*vocabPath)
	if err != nil {
		logger.Error("vocabulary load failed", "error", err)
		os.Exit(1)
	}
	pipeline, err := parser.New(vocab, logger)
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("cannot open file", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := pipeline.Run(ctx, f, filepath.Base(path))
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("cannot encode result", "error", err)
		os.Exit(1)
	}
}
