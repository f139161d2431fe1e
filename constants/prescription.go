package constants

import (
	"strings"
)

// PrescriptionType classifies how the document content was produced.
type PrescriptionType string

const (
	Handwritten PrescriptionType = "handwritten"
	Printed     PrescriptionType = "printed"
	Mixed       PrescriptionType = "mixed"
	Digital     PrescriptionType = "digital"
	// UnknownType marks a record whose extraction failed outright.
	UnknownType PrescriptionType = "unknown"
)

var allTypes = []PrescriptionType{
	Handwritten,
	Printed,
	Mixed,
	Digital,
}

func TypesAsStringSlice() []string {
	result := make([]string, len(allTypes))
	for i, t := range allTypes {
		result[i] = string(t)
	}
	return result
}

// Canonicalize maps free-form type labels onto the closed enum.
func Canonicalize(input string) (PrescriptionType, bool) {
	if input == "" {
		return UnknownType, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]PrescriptionType{
		"handwriting":  Handwritten,
		"hand-written": Handwritten,
		"typed":        Printed,
		"typewritten":  Printed,
		"screen":       Digital,
		"screenshot":   Digital,
		"electronic":   Digital,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allTypes {
		if normalized == string(t) {
			return t, true
		}
	}

	return UnknownType, false
}
