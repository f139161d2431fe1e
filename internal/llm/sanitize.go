package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/docuvault/prescription-extractor/constants"
)

var confidenceKeys = []string{"confidence_score", "ocr_confidence"}

var allowedTopLevel = map[string]struct{}{
	"document_type": {}, "prescription_type": {}, "prescription_number": {},
	"barcode": {}, "issue_date": {}, "patient": {}, "doctor": {}, "hospital": {},
	"diagnosis": {}, "medications": {}, "doctor_signature": {},
	"handwriting_analysis": {}, "notes": {}, "total_items": {},
	"extraction_method": {}, "confidence_score": {}, "ocr_confidence": {},
	"llm_enhanced": {}, "ocr_text": {},
}

// SanitizeDocumentJSON repairs a raw service response before validation:
//   - renames known synonyms onto the schema's field names
//   - drops null values recursively (the services emit null despite being told not to)
//   - canonicalizes prescription_type onto the closed enum
//   - coerces stringly-typed confidences and counts
//   - guarantees medications is an array and drops unusable items
//   - removes unknown top-level keys (additionalProperties=false friendliness)
//
// It never touches out-of-range confidence values; those must fail validation.
func SanitizeDocumentJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to the schema's names
	renamed("prescription_id", "prescription_number")
	renamed("rx_number", "prescription_number")
	renamed("signature", "doctor_signature")
	renamed("medication_items", "medications")
	renamed("drugs", "medications")

	// 2) drop nulls everywhere; pydantic-style services emit them freely
	scrubNulls(m)

	// 3) canonicalize the type enum; an unrecognized label becomes absent
	if v, ok := m["prescription_type"].(string); ok {
		if t, valid := constants.Canonicalize(v); valid {
			m["prescription_type"] = string(t)
		} else {
			delete(m, "prescription_type")
			dropped = append(dropped, "prescription_type("+v+")")
		}
	}

	// 4) coerce stringly confidences; leave numeric values untouched
	for _, k := range confidenceKeys {
		if s, ok := m[k].(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				m[k] = f
			} else {
				delete(m, k)
				dropped = append(dropped, k+"(unparseable)")
			}
		}
	}
	if s, ok := m["total_items"].(string); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			m["total_items"] = n
		} else {
			delete(m, "total_items")
			dropped = append(dropped, "total_items(unparseable)")
		}
	}

	// 5) medications must be an array; unusable items are repaired away
	switch meds := m["medications"].(type) {
	case nil:
		m["medications"] = []any{}
	case []any:
		kept := make([]any, 0, len(meds))
		for _, it := range meds {
			obj, ok := it.(map[string]any)
			if !ok {
				dropped = append(dropped, "medications(non-object item)")
				continue
			}
			name, _ := obj["name"].(string)
			if strings.TrimSpace(name) == "" {
				dropped = append(dropped, "medications(unnamed item)")
				continue
			}
			kept = append(kept, obj)
		}
		m["medications"] = kept
	default:
		m["medications"] = []any{}
		dropped = append(dropped, "medications(type)")
	}

	// 6) remove unknown top-level keys
	for k := range maps.Clone(m) {
		if _, ok := allowedTopLevel[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 7) trim obvious strings; empty optionals become absent
	trimKeys := []string{"document_type", "prescription_number", "barcode", "issue_date", "diagnosis", "notes"}
	for _, k := range trimKeys {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(v)
			if s == "" && k != "document_type" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.sanitize.applied", "dropped", dropped)
	}
	return out, dropped, nil
}

// SanitizeSignatureJSON is the single-object variant used by the signature stage.
func SanitizeSignatureJSON(raw []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	scrubNulls(m)
	if _, ok := m["is_present"]; !ok {
		m["is_present"] = false
	}
	allowed := map[string]struct{}{
		"is_present": {}, "signer_name": {}, "signer_title": {},
		"location": {}, "is_legible": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
		}
	}
	return json.Marshal(m)
}

// scrubNulls removes nulls from an object tree in place.
func scrubNulls(m map[string]any) {
	for k, v := range maps.Clone(m) {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			scrubNulls(t)
		case []any:
			for _, el := range t {
				if obj, ok := el.(map[string]any); ok {
					scrubNulls(obj)
				}
			}
		}
	}
}
