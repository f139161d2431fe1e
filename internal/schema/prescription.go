package schema

import (
	"github.com/docuvault/prescription-extractor/constants"
)

// DocumentType is the fixed discriminator for every record this system produces.
const DocumentType = "prescription"

// UnresolvedDocumentType marks a record whose extraction failed; such a record
// carries zero medications and no signature.
const UnresolvedDocumentType = "unknown"

// SignatureInfo describes a signature found on the document.
type SignatureInfo struct {
	IsPresent   bool     `json:"is_present"`
	SignerName  string   `json:"signer_name,omitempty"`
	SignerTitle string   `json:"signer_title,omitempty"`
	Location    string   `json:"location,omitempty"` // e.g. "bottom right"
	IsLegible   *bool    `json:"is_legible,omitempty"`
	Confidence  *float32 `json:"confidence,omitempty"` // 0..1
}

// MedicationItem is one prescribed entry from the document body.
type MedicationItem struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`       // e.g. "400mg"
	Quantity     string `json:"quantity,omitempty"`     // e.g. "30 tablets"
	Frequency    string `json:"frequency,omitempty"`    // e.g. "1 viên sau ăn"
	Duration     string `json:"duration,omitempty"`     // e.g. "7 days"
	Instructions string `json:"instructions,omitempty"`
	IsHandwritten *bool `json:"is_handwritten,omitempty"` // nil = unknown
}

// PatientInfo holds patient fields as they appear on the prescription.
type PatientInfo struct {
	Name      string `json:"name,omitempty"`
	Age       string `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"` // Nam/Nữ or Male/Female
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
}

// DoctorInfo holds prescriber fields.
type DoctorInfo struct {
	Name          string         `json:"name,omitempty"`
	Title         string         `json:"title,omitempty"` // e.g. "ThS.BS", "Dr."
	Specialty     string         `json:"specialty,omitempty"`
	LicenseNumber string         `json:"license_number,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Signature     *SignatureInfo `json:"signature,omitempty"`
}

// HospitalInfo holds the issuing facility fields.
type HospitalInfo struct {
	Name            string `json:"name,omitempty"`
	Department      string `json:"department,omitempty"` // Khoa
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	PharmacyCounter string `json:"pharmacy_counter,omitempty"`
}

// HandwritingAnalysis reports what the vision service made of handwritten content.
type HandwritingAnalysis struct {
	HasHandwrittenContent bool     `json:"has_handwritten_content"`
	HandwrittenSections   []string `json:"handwritten_sections"`
	OCRConfidence         *float32 `json:"ocr_confidence,omitempty"`
	LLMInterpretation     string   `json:"llm_interpretation,omitempty"`
	UnclearText           []string `json:"unclear_text"`
}

// ExtractedPrescription is the root structured record. Field names and nesting
// are the serialization contract for exports.
type ExtractedPrescription struct {
	DocumentType     string                     `json:"document_type"`
	PrescriptionType constants.PrescriptionType `json:"prescription_type,omitempty"`

	PrescriptionNumber string `json:"prescription_number,omitempty"`
	Barcode            string `json:"barcode,omitempty"`

	// IssueDate is kept as written on the document; callers must not assume
	// it is a valid calendar date.
	IssueDate string `json:"issue_date,omitempty"`

	Patient  PatientInfo  `json:"patient"`
	Doctor   DoctorInfo   `json:"doctor"`
	Hospital HospitalInfo `json:"hospital"`

	Diagnosis   string           `json:"diagnosis,omitempty"` // Chẩn đoán
	Medications []MedicationItem `json:"medications"`

	DoctorSignature     *SignatureInfo       `json:"doctor_signature,omitempty"`
	HandwritingAnalysis *HandwritingAnalysis `json:"handwriting_analysis,omitempty"`

	Notes      string `json:"notes,omitempty"`
	TotalItems int    `json:"total_items,omitempty"`

	// Extraction provenance
	ExtractionMethod constants.ExtractionMethod `json:"extraction_method,omitempty"`
	ConfidenceScore  *float32                   `json:"confidence_score,omitempty"` // 0..1
	OCRConfidence    *float32                   `json:"ocr_confidence,omitempty"`   // 0..1
	LLMEnhanced      bool                       `json:"llm_enhanced"`
	OCRText          string                     `json:"ocr_text,omitempty"` // verbatim
}

// New returns an empty record with the fixed document type and a non-nil
// medications slice.
func New() *ExtractedPrescription {
	return &ExtractedPrescription{
		DocumentType: DocumentType,
		Medications:  []MedicationItem{},
	}
}

// NewSentinel returns the terminal extraction-failure record: unresolved
// document type, zero medications, no signature. Callers treat it as data,
// never as an error.
func NewSentinel() *ExtractedPrescription {
	return &ExtractedPrescription{
		DocumentType: UnresolvedDocumentType,
		Medications:  []MedicationItem{},
	}
}

// Resolved reports whether the primary extraction produced a usable record.
func (p *ExtractedPrescription) Resolved() bool {
	return p.DocumentType != "" && p.DocumentType != UnresolvedDocumentType
}

// Conf is a small helper for the optional confidence pointers.
func Conf(v float32) *float32 { return &v }

// Bool is a helper for optional tri-state booleans.
func Bool(v bool) *bool { return &v }
