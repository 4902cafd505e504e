package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Sanitizer cleans imported cell content with a UGC policy that also keeps cloze markers.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowElements("cloze")
	p.AllowAttrs("index").Matching(bluemonday.Integer).OnElements("cloze")
	return &Sanitizer{policy: p}
}

// HTML sanitizes one fragment.
func (s *Sanitizer) HTML(fragment string) string {
	return s.policy.Sanitize(fragment)
}

// Cell sanitizes content according to its cell type. FlashCard and TrueFalse content is
// JSON, so only its text fields are cleaned and the document is re-encoded.
func (s *Sanitizer) Cell(cellType domain.CellType, content string) (string, error) {
	switch cellType {
	case domain.CellFlashCard:
		var fc domain.FlashCard
		if err := json.Unmarshal([]byte(content), &fc); err != nil {
			return "", fmt.Errorf("bad flash card content: %w", err)
		}
		fc.Question = s.HTML(fc.Question)
		fc.Answer = s.HTML(fc.Answer)
		return encodeJSON(fc)
	case domain.CellTrueFalse:
		var tf domain.TrueFalse
		if err := json.Unmarshal([]byte(content), &tf); err != nil {
			return "", fmt.Errorf("bad true/false content: %w", err)
		}
		tf.Question = s.HTML(tf.Question)
		return encodeJSON(tf)
	default:
		return s.HTML(content), nil
	}
}

// encodeJSON marshals v without escaping HTML characters, so markup survives unchanged.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
