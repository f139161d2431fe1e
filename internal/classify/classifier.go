package classify

import (
	"path/filepath"
	"strings"

	"github.com/docuvault/prescription-extractor/constants"
)

// Config holds the confidence breakpoints. The defaults are hand-tuned
// reference values; keep them configurable rather than deriving them.
type Config struct {
	HandwrittenBelow float32 // default 0.5
	PrintedFrom      float32 // default 0.7
}

// Classifier maps (source hint, OCR confidence) to a prescription type.
// It never fails; with no usable hint it infers purely from confidence.
type Classifier struct {
	cfg Config
}

func New(cfg Config) *Classifier {
	if cfg.HandwrittenBelow <= 0 {
		cfg.HandwrittenBelow = 0.5
	}
	if cfg.PrintedFrom <= 0 {
		cfg.PrintedFrom = 0.7
	}
	return &Classifier{cfg: cfg}
}

// Classify inspects the parent directory name for a type hint; a recognizable
// keyword wins outright. Otherwise the type is inferred from OCR confidence.
func (c *Classifier) Classify(imagePath string, ocrConfidence float32) constants.PrescriptionType {
	parent := strings.ToLower(filepath.Base(filepath.Dir(imagePath)))

	switch {
	case strings.Contains(parent, "handwrit"):
		return constants.Handwritten
	case strings.Contains(parent, "print"):
		return constants.Printed
	case strings.Contains(parent, "mixed"):
		return constants.Mixed
	case strings.Contains(parent, "screen"), strings.Contains(parent, "digital"):
		return constants.Digital
	}

	return c.FromConfidence(ocrConfidence)
}

// FromConfidence applies the fixed breakpoints: low confidence reads as
// handwriting, mid-range as mixed content, high as printed.
func (c *Classifier) FromConfidence(ocrConfidence float32) constants.PrescriptionType {
	switch {
	case ocrConfidence < c.cfg.HandwrittenBelow:
		return constants.Handwritten
	case ocrConfidence < c.cfg.PrintedFrom:
		return constants.Mixed
	default:
		return constants.Printed
	}
}
