package extract

import (
	"context"
	"time"
)

// TextExtractor is the OCR collaborator contract: image file -> text plus a
// scalar confidence. Implementations must tolerate unreadable or corrupt
// images by returning confidence 0 and empty text rather than an error; a
// missing file is the only error path.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

type Result struct {
	Text       string
	Confidence float32 // 0..1
	TotalLines int
	Language   string
	Duration   time.Duration
	Warnings   []string
}
