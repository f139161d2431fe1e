package llm

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/docuvault/prescription-extractor/internal/common"
)

var (
	reFencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	reBraceSpan  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls a JSON object out of otherwise free-form service output.
// A fenced ```json block wins; otherwise the first brace-delimited span is
// tried. Returns common.ErrNoStructuredData when neither parses.
func ExtractJSON(response string) ([]byte, error) {
	if m := reFencedJSON.FindStringSubmatch(response); m != nil {
		if json.Valid([]byte(m[1])) {
			return []byte(m[1]), nil
		}
	}
	if m := reBraceSpan.FindString(response); m != "" {
		if json.Valid([]byte(m)) {
			return []byte(m), nil
		}
	}
	return nil, fmt.Errorf("response of %d bytes: %w", len(response), common.ErrNoStructuredData)
}
