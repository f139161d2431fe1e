package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docuvault/prescription-extractor/internal/schema"
)

// ParsePrescriptionResponse converts free-form service output into a validated
// record: JSON extraction, sanitize pass, schema validation, then decode.
// Errors wrap common.ErrNoStructuredData or are *SchemaValidationError; the
// caller treats both as an extraction-attempt failure.
func ParsePrescriptionResponse(response string, logger *slog.Logger) (*schema.ExtractedPrescription, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	cleaned, _, err := SanitizeDocumentJSON(raw, logger)
	if err != nil {
		return nil, err
	}

	if err := ValidateJSONAgainstSchema(BuildPrescriptionJSONSchema(), cleaned); err != nil {
		return nil, err
	}

	var doc schema.ExtractedPrescription
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return nil, fmt.Errorf("decode prescription: %w", err)
	}
	if doc.Medications == nil {
		doc.Medications = []schema.MedicationItem{}
	}
	return &doc, nil
}

// ParseSignatureResponse is the single-object variant for the signature stage.
func ParseSignatureResponse(response string) (*schema.SignatureInfo, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	cleaned, err := SanitizeSignatureJSON(raw)
	if err != nil {
		return nil, err
	}

	if err := ValidateJSONAgainstSchema(BuildSignatureJSONSchema(), cleaned); err != nil {
		return nil, err
	}

	var sig schema.SignatureInfo
	if err := json.Unmarshal(cleaned, &sig); err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return &sig, nil
}
