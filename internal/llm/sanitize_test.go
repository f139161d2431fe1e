package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeToMap(t *testing.T, raw string) (map[string]any, []string) {
	t.Helper()
	out, dropped, err := SanitizeDocumentJSON([]byte(raw), nil)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	return m, dropped
}

func TestSanitizeDropsNulls(t *testing.T) {
	m, _ := sanitizeToMap(t, `{
		"document_type": "prescription",
		"diagnosis": null,
		"patient": {"name": "A", "age": null}
	}`)

	_, hasDiagnosis := m["diagnosis"]
	assert.False(t, hasDiagnosis)
	patient := m["patient"].(map[string]any)
	_, hasAge := patient["age"]
	assert.False(t, hasAge)
	assert.Equal(t, "A", patient["name"])
}

func TestSanitizeRenamesSynonyms(t *testing.T) {
	m, dropped := sanitizeToMap(t, `{
		"document_type": "prescription",
		"prescription_id": "RX-1",
		"signature": {"is_present": true},
		"drugs": [{"name": "Amoxicillin"}]
	}`)

	assert.Equal(t, "RX-1", m["prescription_number"])
	assert.NotNil(t, m["doctor_signature"])
	require.Len(t, m["medications"], 1)
	assert.NotEmpty(t, dropped)
}

func TestSanitizeCanonicalizesPrescriptionType(t *testing.T) {
	m, _ := sanitizeToMap(t, `{"document_type": "prescription", "prescription_type": "Hand-Written"}`)
	assert.Equal(t, "handwritten", m["prescription_type"])

	m, _ = sanitizeToMap(t, `{"document_type": "prescription", "prescription_type": "cursive"}`)
	_, ok := m["prescription_type"]
	assert.False(t, ok, "unrecognized label becomes absent")
}

func TestSanitizeCoercesStringNumbers(t *testing.T) {
	m, _ := sanitizeToMap(t, `{
		"document_type": "prescription",
		"confidence_score": "0.87",
		"total_items": "3"
	}`)

	assert.InDelta(t, 0.87, m["confidence_score"].(float64), 0.001)
	assert.InDelta(t, 3, m["total_items"].(float64), 0.001)
}

func TestSanitizeLeavesOutOfRangeConfidenceAlone(t *testing.T) {
	// out-of-range values must survive so validation can reject them
	m, _ := sanitizeToMap(t, `{"document_type": "prescription", "confidence_score": 1.5}`)
	assert.InDelta(t, 1.5, m["confidence_score"].(float64), 0.001)
}

func TestSanitizeRepairsMedications(t *testing.T) {
	m, dropped := sanitizeToMap(t, `{
		"document_type": "prescription",
		"medications": [
			{"name": "Amoxicillin", "dosage": "500mg"},
			"free text item",
			{"dosage": "250mg"},
			{"name": "   "}
		]
	}`)

	meds := m["medications"].([]any)
	require.Len(t, meds, 1)
	assert.Equal(t, "Amoxicillin", meds[0].(map[string]any)["name"])
	assert.NotEmpty(t, dropped)
}

func TestSanitizeMedicationsAlwaysArray(t *testing.T) {
	m, _ := sanitizeToMap(t, `{"document_type": "prescription"}`)
	assert.NotNil(t, m["medications"])
	assert.Empty(t, m["medications"])

	m, _ = sanitizeToMap(t, `{"document_type": "prescription", "medications": "none"}`)
	assert.Empty(t, m["medications"])
}

func TestSanitizeRemovesUnknownTopLevelKeys(t *testing.T) {
	m, dropped := sanitizeToMap(t, `{
		"document_type": "prescription",
		"reasoning": "the image shows a standard prescription form"
	}`)

	_, ok := m["reasoning"]
	assert.False(t, ok)
	assert.Contains(t, dropped, "reasoning(unknown)")
}

func TestSanitizeSignatureDefaultsIsPresent(t *testing.T) {
	out, err := SanitizeSignatureJSON([]byte(`{"signer_name": "Dr. B", "note": "x"}`))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, false, m["is_present"])
	assert.Equal(t, "Dr. B", m["signer_name"])
	_, ok := m["note"]
	assert.False(t, ok)
}
