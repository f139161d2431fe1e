package ocr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docuvault/prescription-extractor/constants"
	"github.com/docuvault/prescription-extractor/internal/common"
	"github.com/docuvault/prescription-extractor/internal/extract"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "vie+eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Extractor runs tesseract over prescription images. It satisfies
// extract.TextExtractor; OCR failures on a readable file degrade to an empty
// low-confidence result instead of erroring, so the pipeline can route the
// document to a vision strategy.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "vie+eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, path string) (extract.Result, error) {
	start := time.Now()

	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return extract.Result{}, fmt.Errorf("unsupported extension %q: %w", ext, common.ErrInvalidInput)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return extract.Result{}, fmt.Errorf("%s: %w", path, common.ErrImageNotFound)
		}
		return extract.Result{}, fmt.Errorf("stat image: %w", err)
	}

	e.logger.Debug("starting ocr extraction", "path", path, "ext", ext)

	txt, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		// unreadable/corrupt image: degrade, do not fail the document
		e.logger.Warn("ocr failed; returning empty result", "path", path, "error", err)
		warns = append(warns, err.Error())
		return extract.Result{
			Confidence: 0,
			Language:   e.cfg.TesseractLang,
			Duration:   time.Since(start),
			Warnings:   warns,
		}, nil
	}
	txt = Normalize(txt)

	var ocrConf float32
	if c, w, err2 := e.tesseractTSVConfidence(ctx, path); err2 == nil {
		ocrConf = c
		warns = append(warns, w...)
	} else {
		warns = append(warns, err2.Error())
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight OCR higher if present
	var conf float32
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	} else {
		conf = heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return extract.Result{
		Text:       txt,
		Confidence: conf,
		TotalLines: countLines(txt),
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
	}, nil
}

func countLines(txt string) int {
	if txt == "" {
		return 0
	}
	n := 0
	for _, ln := range strings.Split(txt, "\n") {
		if strings.TrimSpace(ln) != "" {
			n++
		}
	}
	return n
}
