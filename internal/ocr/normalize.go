package ocr

import "strings"

// non-breaking spaces show up in OCR output from scanned forms
var collapsibleSpaces = strings.NewReplacer("\t", " ", " ", " ")

// Normalize squashes whitespace noise out of raw OCR output while preserving
// line structure; downstream parsing is line-oriented.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = collapsibleSpaces.Replace(raw)

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
