package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/prescription-extractor/constants"
	"github.com/docuvault/prescription-extractor/internal/classify"
	"github.com/docuvault/prescription-extractor/internal/common"
	"github.com/docuvault/prescription-extractor/internal/extract"
	"github.com/docuvault/prescription-extractor/internal/fallback"
	"github.com/docuvault/prescription-extractor/internal/llm"
	"github.com/docuvault/prescription-extractor/internal/router"
)

const validRecordJSON = `{
	"document_type": "prescription",
	"medications": [{"name": "Amoxicillin", "dosage": "500mg"}],
	"confidence_score": 0.9
}`

const recordWithSignatureJSON = `{
	"document_type": "prescription",
	"medications": [{"name": "Amoxicillin"}],
	"doctor_signature": {"is_present": true, "signer_name": "Trần Thị Bình"},
	"confidence_score": 0.9
}`

const signatureJSON = `{"is_present": true, "signer_name": "Trần Thị Bình", "confidence": 0.8}`

type fakeOCR struct {
	res extract.Result
	err error
}

func (f fakeOCR) Extract(context.Context, string) (extract.Result, error) {
	return f.res, f.err
}

type fakeText struct {
	response string
	err      error
	calls    int
}

func (f *fakeText) Complete(context.Context, string) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeVision struct {
	responses []string // consumed in order; last one repeats
	err       error
	calls     int
}

func (f *fakeVision) CompleteWithImage(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func newTestProcessor(t *testing.T, cfg Config, strategies llm.Strategies, ocrRes extract.Result, ocrErr error) *Processor {
	t.Helper()
	classifier := classify.New(classify.Config{})
	return NewProcessor(
		cfg,
		fakeOCR{res: ocrRes, err: ocrErr},
		classifier,
		router.New(router.Config{}),
		fallback.NewParser(classifier, nil),
		strategies,
		nil,
	)
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rx.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o644))
	return path
}

func goodOCR() extract.Result {
	return extract.Result{Text: "1. Amoxicillin 500mg 2 viên sáng sau ăn", Confidence: 0.85, TotalLines: 1}
}

func TestProcessTextTierWithSignatureEnrichment(t *testing.T) {
	text := &fakeText{response: validRecordJSON}
	vision := &fakeVision{responses: []string{signatureJSON}}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Text: text, Vision: vision}, goodOCR(), nil)

	doc, record, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	assert.Equal(t, 1, text.calls)
	assert.Equal(t, 1, vision.calls, "signature stage uses the vision strategy")
	assert.True(t, doc.Resolved())
	assert.Equal(t, constants.MethodRemoteText.WithSignature(), doc.ExtractionMethod)
	assert.True(t, doc.LLMEnhanced)
	require.NotNil(t, doc.DoctorSignature)
	assert.True(t, doc.DoctorSignature.IsPresent)
	assert.Equal(t, "Trần Thị Bình", doc.DoctorSignature.SignerName)
	assert.Equal(t, 1, doc.TotalItems)
	assert.Equal(t, goodOCR().Text, doc.OCRText)

	require.NotNil(t, record.FinalConfidence)
	assert.InDelta(t, 0.9, float64(*record.FinalConfidence), 0.001)
	stages := stageNames(record)
	assert.Equal(t, []string{StageOCR, StageClassify, StageRoute, StageExtract, StageSignature}, stages)
}

func TestProcessSkipsSignatureWhenAlreadyExtracted(t *testing.T) {
	text := &fakeText{response: recordWithSignatureJSON}
	vision := &fakeVision{responses: []string{signatureJSON}}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Text: text, Vision: vision}, goodOCR(), nil)

	doc, record, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	assert.Zero(t, vision.calls, "no second call when the record already carries a signature")
	assert.Equal(t, constants.MethodRemoteText, doc.ExtractionMethod, "no suffix without an enrichment call")
	require.NotNil(t, doc.DoctorSignature)
	assert.Contains(t, lastStage(record).Reason, "already extracted")
}

func TestProcessRetriesUntilExhaustedThenSentinel(t *testing.T) {
	text := &fakeText{err: errors.New("rate limited")}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Text: text}, goodOCR(), nil)

	doc, record, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err, "extraction exhaustion is data, not an error")

	assert.Equal(t, 3, text.calls, "initial attempt plus two retries")
	assert.False(t, doc.Resolved())
	assert.Empty(t, doc.Medications)
	assert.Nil(t, doc.DoctorSignature)
	assert.Equal(t, constants.MethodRemoteText, doc.ExtractionMethod)
	assert.Equal(t, goodOCR().Text, doc.OCRText)

	assert.Contains(t, lastStage(record).Reason, "unresolved")
}

func TestProcessRetriesOnUnresolvedDocumentType(t *testing.T) {
	text := &fakeText{response: `{"document_type": "unknown"}`}
	p := newTestProcessor(t, Config{MaxRetries: 1}, llm.Strategies{Text: text}, goodOCR(), nil)

	doc, _, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	assert.Equal(t, 2, text.calls)
	assert.False(t, doc.Resolved())
}

func TestProcessVisionTierForHandwritten(t *testing.T) {
	vision := &fakeVision{responses: []string{validRecordJSON, signatureJSON}}
	lowConf := extract.Result{Text: "smudged", Confidence: 0.3}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Vision: vision}, lowConf, nil)

	doc, _, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	assert.Equal(t, 2, vision.calls, "one extraction call, one signature call")
	assert.Equal(t, constants.MethodRemoteVision.WithSignature(), doc.ExtractionMethod)
	assert.Equal(t, constants.Handwritten, doc.PrescriptionType)
}

func TestProcessForceVisionOverridesRouting(t *testing.T) {
	text := &fakeText{response: validRecordJSON}
	vision := &fakeVision{responses: []string{validRecordJSON, signatureJSON}}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Text: text, Vision: vision}, goodOCR(), nil)

	doc, _, err := p.Process(context.Background(), tempImage(t), true)
	require.NoError(t, err)

	assert.Zero(t, text.calls)
	assert.Equal(t, constants.MethodRemoteVision.WithSignature(), doc.ExtractionMethod)
}

func TestProcessLocalFallbackWithoutStrategies(t *testing.T) {
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{}, goodOCR(), nil)

	doc, record, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	assert.Equal(t, constants.MethodLocalFallback, doc.ExtractionMethod)
	assert.False(t, doc.LLMEnhanced)
	require.Len(t, doc.Medications, 1)
	assert.Equal(t, "Amoxicillin", doc.Medications[0].Name)
	assert.Contains(t, lastStage(record).Reason, "unavailable")
}

func TestProcessLocalFallbackKeepsDirectoryHintType(t *testing.T) {
	p := newTestProcessor(t, Config{}, llm.Strategies{}, goodOCR(), nil)

	dir := filepath.Join(t.TempDir(), "handwritten")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "rx.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	doc, _, err := p.Process(context.Background(), path, false)
	require.NoError(t, err)

	// confidence 0.85 alone would read as printed; the folder hint wins
	assert.Equal(t, constants.Handwritten, doc.PrescriptionType)
	assert.Equal(t, constants.MethodLocalFallback, doc.ExtractionMethod)
}

func TestProcessSignatureFailureIsSilent(t *testing.T) {
	text := &fakeText{response: validRecordJSON}
	vision := &fakeVision{err: errors.New("vision service down")}
	p := newTestProcessor(t, Config{MaxRetries: 2}, llm.Strategies{Text: text, Vision: vision}, goodOCR(), nil)

	doc, _, err := p.Process(context.Background(), tempImage(t), false)
	require.NoError(t, err)

	require.NotNil(t, doc.DoctorSignature)
	assert.False(t, doc.DoctorSignature.IsPresent, "failure records an explicit not-present marker")
	assert.Equal(t, constants.MethodRemoteText.WithSignature(), doc.ExtractionMethod)
}

func TestProcessMissingImage(t *testing.T) {
	p := newTestProcessor(t, Config{}, llm.Strategies{}, extract.Result{}, common.ErrImageNotFound)

	_, _, err := p.Process(context.Background(), "/nope/rx.jpg", false)
	assert.ErrorIs(t, err, common.ErrImageNotFound)
}

func TestProcessBatchKeepsOrderAndSurvivesFailures(t *testing.T) {
	classifier := classify.New(classify.Config{})
	ocrByPath := func(ctx context.Context, path string) (extract.Result, error) {
		if filepath.Base(path) == "missing.jpg" {
			return extract.Result{}, common.ErrImageNotFound
		}
		return goodOCR(), nil
	}
	p := NewProcessor(
		Config{Concurrency: 2},
		ocrFunc(ocrByPath),
		classifier,
		router.New(router.Config{}),
		fallback.NewParser(classifier, nil),
		llm.Strategies{},
		nil,
	)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.jpg")
	require.NoError(t, os.WriteFile(good, []byte("x"), 0o644))
	inputs := []string{good, filepath.Join(dir, "missing.jpg"), good}

	results := p.ProcessBatch(context.Background(), inputs, false)
	require.Len(t, results, 3)

	assert.Equal(t, inputs[0], results[0].Input)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Document)

	assert.ErrorIs(t, results[1].Err, common.ErrImageNotFound)
	assert.Nil(t, results[1].Document)

	assert.NoError(t, results[2].Err)
	assert.NotNil(t, results[2].Document)
}

type ocrFunc func(context.Context, string) (extract.Result, error)

func (f ocrFunc) Extract(ctx context.Context, path string) (extract.Result, error) {
	return f(ctx, path)
}

func stageNames(r *ProcessingRecord) []string {
	names := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		names[i] = s.Stage
	}
	return names
}

func lastStage(r *ProcessingRecord) StageEntry {
	return r.Stages[len(r.Stages)-1]
}
