package ocr

import (
	"regexp"
	"strings"
)

var (
	reBoxNoise = regexp.MustCompile(`(?m)^[|_\-=~\s]{4,}$`)

	reDate   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	reDosage = regexp.MustCompile(`(?i)\b\d+\s*(?:mg|ml|g|mcg|iu|viên)\b`)
)

var frequencyHints = []string{
	"ngày", "lần", "sáng", "trưa", "tối",
	"sau ăn", "trước ăn", "uống",
	"daily", "times", "morning", "evening",
}

// heuristicConfidence scores OCR text by the presence of prescription
// artifacts. It backstops the word-level confidence when tesseract reports
// nothing usable.
func heuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	lower := strings.ToLower(txt)

	var score float32 = 0.2 // non-empty text is worth something

	if reDate.MatchString(txt) {
		score += 0.2
	}
	if reDosage.MatchString(txt) {
		score += 0.3
	}
	for _, hint := range frequencyHints {
		if strings.Contains(lower, hint) {
			score += 0.2
			break
		}
	}
	if countLines(txt) >= 4 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
