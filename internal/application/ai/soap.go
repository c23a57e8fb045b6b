package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// ParseSOAPNote decodes a SOAP note from model output. Code fences and trailing
// commas are tolerated. It returns nil when the text is not a SOAP JSON object.
func ParseSOAPNote(text string) *ai.SOAPNote {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil
	}

	var note ai.SOAPNote
	if err := json.Unmarshal([]byte(s), &note); err != nil {
		if err := json.Unmarshal([]byte(trailingComma.ReplaceAllString(s, "$1")), &note); err != nil {
			return nil
		}
	}
	if note.Subjective == "" && note.Assessment == "" && note.Objective == (ai.Objective{}) && note.Plan == (ai.Plan{}) {
		return nil
	}
	return &note
}
