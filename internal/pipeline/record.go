package pipeline

import "time"

// Stage names as they appear in processing records.
const (
	StageOCR       = "ocr"
	StageClassify  = "classify"
	StageRoute     = "route"
	StageExtract   = "extract"
	StageSignature = "signature"
)

// StageEntry is one timed step of a document's journey through the pipeline.
type StageEntry struct {
	Stage          string        `json:"stage"`
	Elapsed        time.Duration `json:"elapsed_ms"`
	Reason         string        `json:"reason,omitempty"`
	Tier           string        `json:"tier,omitempty"`
	Attempts       int           `json:"attempts,omitempty"`
	Confidence     *float32      `json:"confidence,omitempty"`
	TextLength     int           `json:"text_length,omitempty"`
	SignatureFound *bool         `json:"signature_found,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// ProcessingRecord is the per-document audit trail returned alongside the
// structured record. It is metadata about how the extraction went, not part
// of the extraction itself.
type ProcessingRecord struct {
	RequestID       string        `json:"request_id"`
	ImagePath       string        `json:"image_path"`
	Stages          []StageEntry  `json:"stages"`
	TotalElapsed    time.Duration `json:"total_elapsed_ms"`
	FinalConfidence *float32      `json:"final_confidence,omitempty"`
}

func (r *ProcessingRecord) add(e StageEntry) {
	r.Stages = append(r.Stages, e)
}
