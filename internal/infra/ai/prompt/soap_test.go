package prompt

import (
	"strings"
	"testing"
)

func TestUserPrompt(t *testing.T) {
	t.Run("defaults when empty", func(t *testing.T) {
		got := UserPrompt("  ", "", 0)
		for _, want := range []string{DefaultSubjective, "No lab results provided", "No imaging studies provided"} {
			if !strings.Contains(got, want) {
				t.Errorf("UserPrompt() missing %q in %q", want, got)
			}
		}
	})

	t.Run("includes case data", func(t *testing.T) {
		got := UserPrompt("chest pain", "troponin 0.4", 2)
		for _, want := range []string{"chest pain", "troponin 0.4", "2 medical image(s) attached"} {
			if !strings.Contains(got, want) {
				t.Errorf("UserPrompt() missing %q", want)
			}
		}
		if strings.Contains(got, DefaultSubjective) {
			t.Error("UserPrompt() used default subjective despite narrative")
		}
	})
}

func TestSystemPromptSchema(t *testing.T) {
	s := SystemPrompt()
	for _, key := range []string{`"Subjective"`, `"Vital_Signs"`, `"Follow_up"`, `"Additional_Studies"`} {
		if !strings.Contains(s, key) {
			t.Errorf("SystemPrompt() missing %s", key)
		}
	}
}
