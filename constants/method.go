package constants

// ExtractionMethod tags how a record's primary extraction was produced.
// These strings are part of the export contract and must stay stable.
type ExtractionMethod string

const (
	MethodLocalFallback ExtractionMethod = "local_fallback"
	MethodRemoteText    ExtractionMethod = "remote_text_structuring"
	MethodRemoteVision  ExtractionMethod = "remote_vision"
)

// WithSignature returns the combined form used when the signature
// enrichment stage ran in addition to the primary extraction.
func (m ExtractionMethod) WithSignature() ExtractionMethod {
	if m == "" {
		return m
	}
	return m + "+signature"
}
