// Package fallback structures prescription text with regular expressions
// alone. It is the terminal tier: always available, never calls out, and is
// used when remote analysis is unavailable or the router deems the OCR text
// good enough to parse directly.
package fallback

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/docuvault/prescription-extractor/constants"
	"github.com/docuvault/prescription-extractor/internal/classify"
	"github.com/docuvault/prescription-extractor/internal/schema"
)

var (
	reEnumerator = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)
	reBullet     = regexp.MustCompile(`^\s*[-•*+]\s*`)

	reDosage   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*(?:mg|ml|g|mcg|iu))\b`)
	reQuantity = regexp.MustCompile(`(?i)(?:x|SL:?|số lượng:?)\s*(\d+)|(\d+)\s*(?:viên|tablet|capsule|gói|ống)`)

	// candidate frequency phrases; the longest match wins so a phrase like
	// "2 viên sáng sau ăn" is stripped whole rather than piecemeal
	reFrequencies = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ngày\s+(?:uống\s+)?\d+\s*lần[^\n]*`),
		regexp.MustCompile(`(?i)\d+\s*viên[^\n]*`),
		regexp.MustCompile(`(?i)(?:sáng|trưa|chiều|tối)(?:[,\s/-]+(?:sáng|trưa|chiều|tối))*[^\n]*`),
		regexp.MustCompile(`(?i)sau\s+(?:khi\s+)?ăn[^\n]*`),
		regexp.MustCompile(`(?i)trước\s+(?:khi\s+)?ăn[^\n]*`),
		regexp.MustCompile(`(?i)\d+\s*(?:times?|lần)\s*(?:/|per\s+)?(?:day|ngày)[^\n]*`),
	}

	reDuration = regexp.MustCompile(`(?i)(?:trong\s+)?(\d+)\s*(?:ngày|tuần|tháng|days?|weeks?)`)

	rePatientName  = regexp.MustCompile(`(?i)(?:họ\s*(?:và)?\s*tên|tên\s*bệnh\s*nhân|patient(?:\s*name)?)\s*[:：]?\s*(.+)`)
	reDoctorName   = regexp.MustCompile(`(?i)(?:bác\s*sĩ|bs\.?|doctor|dr\.?)\s*[:：]?\s*(.+)`)
	reHospital     = regexp.MustCompile(`(?i)(?:bệnh\s*viện|phòng\s*khám|bv\.?|hospital|clinic)\s*[:：]?\s*(.+)`)
	reDiagnosis    = regexp.MustCompile(`(?i)(?:chẩn\s*đoán|diagnosis)\s*[:：]?\s*(.+)`)
	reRxNumber     = regexp.MustCompile(`(?i)(?:số\s*đơn|đơn\s*số|mã\s*đơn|rx\s*(?:no|#)?)\s*[:：]?\s*([A-Za-z0-9/-]+)`)
	reDateExtract  = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	reAge          = regexp.MustCompile(`(?i)(?:tuổi|age)\s*[:：]?\s*(\d{1,3})`)
	reGender       = regexp.MustCompile(`(?i)(?:giới\s*tính|gender|sex)\s*[:：]?\s*(\S+)`)
)

// medicationKeywords mark a line as plausibly a medication entry when no
// enumerator or bullet is present.
var medicationKeywords = []string{
	"mg", "ml", "viên", "tablet", "capsule", "gói", "ống", "chai",
	"ngày", "lần", "sáng", "trưa", "tối",
	"sau ăn", "trước ăn", "uống", "tiêm", "bôi", "nhỏ",
}

type Parser struct {
	classifier *classify.Classifier
	logger     *slog.Logger
}

func NewParser(classifier *classify.Classifier, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{classifier: classifier, logger: logger}
}

// Parse structures OCR text without remote help. It never fails: worst case
// is a record with an empty medication list.
func (p *Parser) Parse(ocrText string, ocrConfidence float32) *schema.ExtractedPrescription {
	rec := schema.New()
	rec.ExtractionMethod = constants.MethodLocalFallback
	rec.LLMEnhanced = false
	rec.ConfidenceScore = schema.Conf(ocrConfidence)
	rec.OCRConfidence = schema.Conf(ocrConfidence)
	rec.OCRText = ocrText
	rec.PrescriptionType = p.classifier.FromConfidence(ocrConfidence)

	lines := strings.Split(ocrText, "\n")
	p.parseHeaders(lines, rec)

	meds := p.parseMedications(lines, false)
	if len(meds) == 0 {
		// relaxed pass: a single keyword is enough
		meds = p.parseMedications(lines, true)
	}
	rec.Medications = meds
	rec.TotalItems = len(meds)

	p.logger.Debug("fallback parse complete",
		"medications", len(meds),
		"ocr_confidence", ocrConfidence,
	)
	return rec
}

func (p *Parser) parseHeaders(lines []string, rec *schema.ExtractedPrescription) {
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if m := rePatientName.FindStringSubmatch(ln); m != nil && rec.Patient.Name == "" {
			rec.Patient.Name = strings.TrimSpace(m[1])
		}
		if m := reAge.FindStringSubmatch(ln); m != nil && rec.Patient.Age == "" {
			rec.Patient.Age = m[1]
		}
		if m := reGender.FindStringSubmatch(ln); m != nil && rec.Patient.Gender == "" {
			rec.Patient.Gender = strings.TrimSpace(m[1])
		}
		if m := reDoctorName.FindStringSubmatch(ln); m != nil && rec.Doctor.Name == "" {
			rec.Doctor.Name = strings.TrimSpace(m[1])
		}
		if m := reHospital.FindStringSubmatch(ln); m != nil && rec.Hospital.Name == "" {
			rec.Hospital.Name = strings.TrimSpace(m[1])
		}
		if m := reDiagnosis.FindStringSubmatch(ln); m != nil && rec.Diagnosis == "" {
			rec.Diagnosis = strings.TrimSpace(m[1])
		}
		if m := reRxNumber.FindStringSubmatch(ln); m != nil && rec.PrescriptionNumber == "" {
			rec.PrescriptionNumber = m[1]
		}
		if m := reDateExtract.FindStringSubmatch(ln); m != nil && rec.IssueDate == "" {
			rec.IssueDate = m[1]
		}
	}
}

func (p *Parser) parseMedications(lines []string, relaxed bool) []schema.MedicationItem {
	var meds []schema.MedicationItem
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		// header lines are not medications
		if rePatientName.MatchString(ln) || reDoctorName.MatchString(ln) ||
			reHospital.MatchString(ln) || reDiagnosis.MatchString(ln) {
			continue
		}
		if !p.looksLikeMedication(ln, relaxed) {
			continue
		}
		if item, ok := p.parseMedicationLine(ln); ok {
			meds = append(meds, item)
		}
	}
	return meds
}

func (p *Parser) looksLikeMedication(ln string, relaxed bool) bool {
	if reEnumerator.MatchString(ln) || reBullet.MatchString(ln) {
		return true
	}
	need := 2
	if relaxed {
		need = 1
	}
	lower := strings.ToLower(ln)
	hits := 0
	for _, kw := range medicationKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= need {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseMedicationLine(ln string) (schema.MedicationItem, bool) {
	stripped := reEnumerator.ReplaceAllString(ln, "")
	stripped = reBullet.ReplaceAllString(stripped, "")
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return schema.MedicationItem{}, false
	}

	var item schema.MedicationItem
	name := stripped

	if m := reDosage.FindStringSubmatch(stripped); m != nil {
		item.Dosage = strings.TrimSpace(m[1])
		name = strings.Replace(name, m[0], "", 1)
	}
	if m := reQuantity.FindStringSubmatch(stripped); m != nil {
		if m[1] != "" {
			item.Quantity = m[1]
		} else {
			item.Quantity = m[2]
		}
	}
	if freq := longestFrequency(stripped); freq != "" {
		item.Frequency = strings.TrimSpace(freq)
		name = strings.Replace(name, freq, "", 1)
	}
	if m := reDuration.FindStringSubmatch(stripped); m != nil {
		item.Duration = strings.TrimSpace(m[0])
		name = strings.Replace(name, m[0], "", 1)
	}

	name = strings.Trim(strings.Join(strings.Fields(name), " "), " .,;:-")
	if len([]rune(name)) < 2 {
		name = stripped
	}
	item.Name = name
	return item, true
}

// longestFrequency returns the longest match among the candidate frequency
// patterns, or "" when none match.
func longestFrequency(s string) string {
	best := ""
	for _, re := range reFrequencies {
		if m := re.FindString(s); len(m) > len(best) {
			best = m
		}
	}
	return best
}
