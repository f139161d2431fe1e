// rx-batch walks a directory of prescription images, runs each through the
// extraction pipeline, and writes the structured results as JSON (optionally
// plus a spreadsheet summary).
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuvault/prescription-extractor/constants"
	"github.com/docuvault/prescription-extractor/internal/classify"
	"github.com/docuvault/prescription-extractor/internal/common"
	"github.com/docuvault/prescription-extractor/internal/export"
	"github.com/docuvault/prescription-extractor/internal/fallback"
	"github.com/docuvault/prescription-extractor/internal/llm"
	"github.com/docuvault/prescription-extractor/internal/ocr"
	"github.com/docuvault/prescription-extractor/internal/pipeline"
	"github.com/docuvault/prescription-extractor/internal/repository"
	"github.com/docuvault/prescription-extractor/internal/router"
)

func main() {
	var (
		dir         = flag.String("dir", "", "directory of prescription images (required)")
		out         = flag.String("out", "", "output JSON path (default <dir>/prescriptions.json)")
		xlsxOut     = flag.String("xlsx", "", "also write a spreadsheet summary to this path")
		forceVision = flag.Bool("force-vision", false, "route every document to image analysis")
		concurrency = flag.Int("concurrency", 0, "batch worker pool size (overrides BATCH_CONCURRENCY)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *dir == "" {
		printError("--dir is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("invalid configuration: %v", err)
		os.Exit(2)
	}
	if *concurrency > 0 {
		cfg.Pipeline.Concurrency = *concurrency
	}

	inputs, err := collectImages(*dir)
	if err != nil {
		printError("scan %s: %v", *dir, err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		printError("no images found under %s", *dir)
		os.Exit(1)
	}
	logger.Info("batch.start", "dir", *dir, "images", len(inputs), "concurrency", cfg.Pipeline.Concurrency)

	classifier := classify.New(classify.Config{
		HandwrittenBelow: cfg.Pipeline.HandwrittenBelow,
		PrintedFrom:      cfg.Pipeline.PrintedFrom,
	})
	processor := pipeline.NewProcessor(
		pipeline.Config{
			MaxRetries:  cfg.Pipeline.MaxRetries,
			Concurrency: cfg.Pipeline.Concurrency,
		},
		ocr.NewExtractor(ocr.Config{
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			TessdataDir:   cfg.OCR.TessdataDir,
			PSM:           cfg.OCR.PSM,
			OEM:           cfg.OCR.OEM,
		}, logger),
		classifier,
		router.New(router.Config{VisionThreshold: cfg.Pipeline.VisionThreshold}),
		fallback.NewParser(classifier, logger),
		llm.NewStrategies(cfg.LLM, logger),
		logger,
	)

	results := processor.ProcessBatch(context.Background(), inputs, *forceVision)

	store := repository.NewResults()
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error("batch.document_failed", "input", res.Input, "error", res.Err)
			continue
		}
		store.Add(filepath.Base(res.Input), res.Document)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(*dir, "prescriptions.json")
	}
	data, err := export.MarshalBatchJSON(store.List())
	if err != nil {
		printError("serialize results: %v", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		printError("write %s: %v", outPath, err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		book, err := export.BuildXLSX(store.List(), logger)
		if err != nil {
			printError("build spreadsheet: %v", err)
			os.Exit(1)
		}
		if err := book.SaveAs(*xlsxOut); err != nil {
			printError("write %s: %v", *xlsxOut, err)
			os.Exit(1)
		}
	}

	stats := store.Stats()
	fmt.Printf("processed %d image(s): %d resolved, %d with signature, %d medications total, %d failed\n",
		stats.Total, stats.Resolved, stats.WithSignature, stats.TotalMedications, failed)
	fmt.Printf("results written to %s\n", outPath)
}

// collectImages walks dir for supported image files, skipping hidden entries.
func collectImages(dir string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			inputs = append(inputs, path)
		}
		return nil
	})
	return inputs, err
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
