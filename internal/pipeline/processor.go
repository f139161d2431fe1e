// Package pipeline orchestrates the per-document flow: OCR, classification,
// tier routing, primary extraction with retries, then signature enrichment.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docuvault/prescription-extractor/constants"
	"github.com/docuvault/prescription-extractor/internal/classify"
	"github.com/docuvault/prescription-extractor/internal/extract"
	"github.com/docuvault/prescription-extractor/internal/fallback"
	"github.com/docuvault/prescription-extractor/internal/llm"
	"github.com/docuvault/prescription-extractor/internal/router"
	"github.com/docuvault/prescription-extractor/internal/schema"
)

type Config struct {
	MaxRetries  int // extra remote attempts after the first; default 2
	Concurrency int // batch worker pool size; default 1
}

// Processor ties the stages together. All collaborators are injected so tests
// can run the full flow with fakes.
type Processor struct {
	cfg        Config
	ocr        extract.TextExtractor
	classifier *classify.Classifier
	router     *router.Router
	parser     *fallback.Parser
	strategies llm.Strategies
	logger     *slog.Logger
}

func NewProcessor(
	cfg Config,
	ocr extract.TextExtractor,
	classifier *classify.Classifier,
	rtr *router.Router,
	parser *fallback.Parser,
	strategies llm.Strategies,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Processor{
		cfg:        cfg,
		ocr:        ocr,
		classifier: classifier,
		router:     rtr,
		parser:     parser,
		strategies: strategies,
		logger:     logger,
	}
}

// Process runs one image through the full pipeline. The only error path is a
// missing or unreadable input file; every extraction failure downgrades to the
// sentinel record so batch runs keep going.
func (p *Processor) Process(ctx context.Context, imagePath string, forceVision bool) (*schema.ExtractedPrescription, *ProcessingRecord, error) {
	start := time.Now()
	reqID := uuid.New().String()
	log := p.logger.With("req_id", reqID, "image", filepath.Base(imagePath))

	record := &ProcessingRecord{RequestID: reqID, ImagePath: imagePath}

	// OCR
	ocrStart := time.Now()
	ocrRes, err := p.ocr.Extract(ctx, imagePath)
	if err != nil {
		log.Error("pipeline.ocr.failed", "error", err)
		return nil, record, err
	}
	record.add(StageEntry{
		Stage:      StageOCR,
		Elapsed:    time.Since(ocrStart),
		Confidence: schema.Conf(ocrRes.Confidence),
		TextLength: len(ocrRes.Text),
	})
	log.Info("pipeline.ocr.done",
		"confidence", ocrRes.Confidence,
		"lines", ocrRes.TotalLines,
		"elapsed_ms", time.Since(ocrStart).Milliseconds(),
	)

	// Classify
	clsStart := time.Now()
	ptype := p.classifier.Classify(imagePath, ocrRes.Confidence)
	record.add(StageEntry{
		Stage:   StageClassify,
		Elapsed: time.Since(clsStart),
		Reason:  string(ptype),
	})

	// Route
	tier, reason := p.router.Decide(router.Input{
		Confidence:      ocrRes.Confidence,
		Type:            ptype,
		ForceVision:     forceVision,
		TextAvailable:   p.strategies.TextAvailable(),
		VisionAvailable: p.strategies.VisionAvailable(),
	})
	record.add(StageEntry{Stage: StageRoute, Tier: string(tier), Reason: reason})
	log.Info("pipeline.route.decided", "tier", tier, "reason", reason)

	// Primary extraction
	extStart := time.Now()
	doc, attempts := p.extract(ctx, log, tier, imagePath, ocrRes, ptype)
	record.add(StageEntry{
		Stage:    StageExtract,
		Elapsed:  time.Since(extStart),
		Tier:     string(tier),
		Attempts: attempts,
	})

	// Signature enrichment
	p.enrichSignature(ctx, log, record, doc, imagePath, ocrRes.Text)

	doc.TotalItems = len(doc.Medications)

	record.TotalElapsed = time.Since(start)
	if doc.ConfidenceScore != nil {
		record.FinalConfidence = doc.ConfidenceScore
	} else {
		record.FinalConfidence = doc.OCRConfidence
	}
	log.Info("pipeline.done",
		"document_type", doc.DocumentType,
		"method", doc.ExtractionMethod,
		"medications", len(doc.Medications),
		"elapsed_ms", record.TotalElapsed.Milliseconds(),
	)
	return doc, record, nil
}

// extract runs the chosen tier. Remote tiers retry on failure and collapse to
// the sentinel record when every attempt fails; the local tier cannot fail.
func (p *Processor) extract(ctx context.Context, log *slog.Logger, tier router.Tier, imagePath string, ocrRes extract.Result, ptype constants.PrescriptionType) (*schema.ExtractedPrescription, int) {
	switch tier {
	case router.TierVision:
		return p.extractRemote(ctx, log, constants.MethodRemoteVision, ocrRes, ptype, func(ctx context.Context) (string, error) {
			image, err := os.ReadFile(imagePath)
			if err != nil {
				return "", fmt.Errorf("read image: %w", err)
			}
			mediaType := constants.MediaTypeForExt(filepath.Ext(imagePath))
			prompt := llm.BuildVisionPrompt(ocrRes.Text, ocrRes.Confidence)
			return p.strategies.Vision.CompleteWithImage(ctx, prompt, image, mediaType)
		})
	case router.TierText:
		return p.extractRemote(ctx, log, constants.MethodRemoteText, ocrRes, ptype, func(ctx context.Context) (string, error) {
			return p.strategies.Text.Complete(ctx, llm.BuildTextExtractionPrompt(ocrRes.Text))
		})
	default:
		doc := p.parser.Parse(ocrRes.Text, ocrRes.Confidence)
		// the classifier saw the directory hint; its verdict outranks the
		// parser's confidence-only derivation
		doc.PrescriptionType = ptype
		return doc, 1
	}
}

func (p *Processor) extractRemote(ctx context.Context, log *slog.Logger, method constants.ExtractionMethod, ocrRes extract.Result, ptype constants.PrescriptionType, call func(context.Context) (string, error)) (*schema.ExtractedPrescription, int) {
	maxAttempts := p.cfg.MaxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := call(ctx)
		if err != nil {
			log.Warn("pipeline.extract.attempt_failed",
				"method", method, "attempt", attempt, "error", err)
			continue
		}
		doc, err := llm.ParsePrescriptionResponse(response, log)
		if err != nil {
			log.Warn("pipeline.extract.unusable_response",
				"method", method, "attempt", attempt, "error", err)
			continue
		}
		if !doc.Resolved() {
			log.Warn("pipeline.extract.unresolved",
				"method", method, "attempt", attempt)
			continue
		}

		doc.ExtractionMethod = method
		doc.LLMEnhanced = true
		doc.OCRConfidence = schema.Conf(ocrRes.Confidence)
		doc.OCRText = ocrRes.Text
		if doc.PrescriptionType == "" {
			doc.PrescriptionType = ptype
		}
		return doc, attempt
	}

	log.Error("pipeline.extract.exhausted", "method", method, "attempts", maxAttempts)
	sentinel := schema.NewSentinel()
	sentinel.ExtractionMethod = method
	sentinel.OCRConfidence = schema.Conf(ocrRes.Confidence)
	sentinel.OCRText = ocrRes.Text
	return sentinel, maxAttempts
}

// enrichSignature always runs after primary extraction when the vision
// strategy exists and no signature was already reported. A sentinel record
// carries no signature, and enrichment failure is silent: the record gets an
// explicit not-present marker instead of an error.
func (p *Processor) enrichSignature(ctx context.Context, log *slog.Logger, record *ProcessingRecord, doc *schema.ExtractedPrescription, imagePath, ocrText string) {
	switch {
	case !doc.Resolved():
		record.add(StageEntry{Stage: StageSignature, Reason: "skipped: extraction unresolved"})
		return
	case !p.strategies.VisionAvailable():
		record.add(StageEntry{Stage: StageSignature, Reason: "skipped: image-analysis unavailable"})
		return
	case doc.DoctorSignature != nil || doc.Doctor.Signature != nil:
		record.add(StageEntry{Stage: StageSignature, Reason: "skipped: signature already extracted"})
		return
	}

	sigStart := time.Now()
	sig := p.detectSignature(ctx, log, imagePath)
	found := sig.IsPresent
	record.add(StageEntry{
		Stage:          StageSignature,
		Elapsed:        time.Since(sigStart),
		SignatureFound: schema.Bool(found),
	})

	doc.DoctorSignature = sig
	doc.ExtractionMethod = doc.ExtractionMethod.WithSignature()
	log.Info("pipeline.signature.done",
		"found", found,
		"elapsed_ms", time.Since(sigStart).Milliseconds(),
	)
}

func (p *Processor) detectSignature(ctx context.Context, log *slog.Logger, imagePath string) *schema.SignatureInfo {
	notFound := &schema.SignatureInfo{IsPresent: false}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		log.Warn("pipeline.signature.read_failed", "error", err)
		return notFound
	}
	mediaType := constants.MediaTypeForExt(filepath.Ext(imagePath))

	response, err := p.strategies.Vision.CompleteWithImage(ctx, llm.BuildSignaturePrompt(), image, mediaType)
	if err != nil {
		log.Warn("pipeline.signature.call_failed", "error", err)
		return notFound
	}
	sig, err := llm.ParseSignatureResponse(response)
	if err != nil {
		log.Warn("pipeline.signature.unusable_response", "error", err)
		return notFound
	}
	return sig
}
