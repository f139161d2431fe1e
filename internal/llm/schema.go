package llm

import (
	"github.com/docuvault/prescription-extractor/constants"
)

// BuildPrescriptionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. It is embedded in prompts as the output constraint and used
// locally to validate responses.
func BuildPrescriptionJSONSchema() map[string]any {
	props := map[string]any{
		"document_type": map[string]any{"type": "string", "minLength": 1},
		"prescription_type": map[string]any{
			"type": "string",
			"enum": constants.TypesAsStringSlice(),
		},
		"prescription_number": map[string]any{"type": "string"},
		"barcode":             map[string]any{"type": "string"},
		"issue_date":          map[string]any{"type": "string"},
		"patient": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":       map[string]any{"type": "string"},
				"age":        map[string]any{"type": "string"},
				"gender":     map[string]any{"type": "string"},
				"address":    map[string]any{"type": "string"},
				"phone":      map[string]any{"type": "string"},
				"patient_id": map[string]any{"type": "string"},
			},
		},
		"doctor": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":           map[string]any{"type": "string"},
				"title":          map[string]any{"type": "string"},
				"specialty":      map[string]any{"type": "string"},
				"license_number": map[string]any{"type": "string"},
				"phone":          map[string]any{"type": "string"},
				"signature":      signatureProp(),
			},
		},
		"hospital": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":             map[string]any{"type": "string"},
				"department":       map[string]any{"type": "string"},
				"address":          map[string]any{"type": "string"},
				"phone":            map[string]any{"type": "string"},
				"pharmacy_counter": map[string]any{"type": "string"},
			},
		},
		"diagnosis": map[string]any{"type": "string"},
		"medications": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":           map[string]any{"type": "string", "minLength": 1},
					"dosage":         map[string]any{"type": "string"},
					"quantity":       map[string]any{"type": "string"},
					"frequency":      map[string]any{"type": "string"},
					"duration":       map[string]any{"type": "string"},
					"instructions":   map[string]any{"type": "string"},
					"is_handwritten": map[string]any{"type": "boolean"},
				},
				"required": []string{"name"},
			},
		},
		"doctor_signature": signatureProp(),
		"handwriting_analysis": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"has_handwritten_content": map[string]any{"type": "boolean"},
				"handwritten_sections":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"ocr_confidence":          confidenceProp(),
				"llm_interpretation":      map[string]any{"type": "string"},
				"unclear_text":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		},
		"notes":             map[string]any{"type": "string"},
		"total_items":       map[string]any{"type": "integer", "minimum": 0},
		"extraction_method": map[string]any{"type": "string"},
		"confidence_score":  confidenceProp(),
		"ocr_confidence":    confidenceProp(),
		"llm_enhanced":      map[string]any{"type": "boolean"},
		"ocr_text":          map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"document_type"},
	}
}

// BuildSignatureJSONSchema validates the narrow signature-only response.
func BuildSignatureJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"is_present":   map[string]any{"type": "boolean"},
			"signer_name":  map[string]any{"type": "string"},
			"signer_title": map[string]any{"type": "string"},
			"location":     map[string]any{"type": "string"},
			"is_legible":   map[string]any{"type": "boolean"},
			"confidence":   confidenceProp(),
		},
		"required": []string{"is_present"},
	}
}

func signatureProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_present":   map[string]any{"type": "boolean"},
			"signer_name":  map[string]any{"type": "string"},
			"signer_title": map[string]any{"type": "string"},
			"location":     map[string]any{"type": "string"},
			"is_legible":   map[string]any{"type": "boolean"},
			"confidence":   confidenceProp(),
		},
	}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
