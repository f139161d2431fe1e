package router

import (
	"fmt"

	"github.com/docuvault/prescription-extractor/constants"
)

// Tier is one of the three extraction strategies the router can pick.
type Tier string

const (
	TierLocalFallback Tier = "local_fallback"
	TierText          Tier = "text_analysis"
	TierVision        Tier = "image_analysis"
)

// Config holds the routing threshold. 0.6 is the hand-tuned reference value.
type Config struct {
	VisionThreshold float32
}

// Input is everything the routing decision depends on.
type Input struct {
	Confidence      float32
	Type            constants.PrescriptionType
	ForceVision     bool
	TextAvailable   bool
	VisionAvailable bool
}

// Router selects the primary extraction tier. The signature-enrichment
// decision is made separately by the orchestrator after the primary tier runs.
type Router struct {
	cfg Config
}

func New(cfg Config) *Router {
	if cfg.VisionThreshold <= 0 {
		cfg.VisionThreshold = 0.6
	}
	return &Router{cfg: cfg}
}

// Decide returns exactly one tier plus a human-readable reason.
// Decision order, first match wins:
//  1. forced override with vision available
//  2. handwritten/mixed content with vision available
//  3. low OCR confidence with vision available
//  4. text structuring when available
//  5. local fallback
//
// Handwriting and low-confidence text are unreliable for pure-text
// structuring; when confidence is adequate, text structuring is preferred
// over vision because it is cheaper and sufficient for printed content.
func (r *Router) Decide(in Input) (Tier, string) {
	if in.ForceVision && in.VisionAvailable {
		return TierVision, "vision forced by caller"
	}
	if (in.Type == constants.Handwritten || in.Type == constants.Mixed) && in.VisionAvailable {
		return TierVision, fmt.Sprintf("prescription_type=%s", in.Type)
	}
	if in.Confidence < r.cfg.VisionThreshold && in.VisionAvailable {
		return TierVision, fmt.Sprintf("ocr_confidence=%.2f below threshold %.2f", in.Confidence, r.cfg.VisionThreshold)
	}
	if in.TextAvailable {
		return TierText, fmt.Sprintf("ocr_confidence=%.2f sufficient for text structuring", in.Confidence)
	}
	return TierLocalFallback, "no remote strategy available"
}
