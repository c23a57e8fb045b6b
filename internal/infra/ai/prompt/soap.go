// Package prompt holds the instructions sent to the language model.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultSubjective stands in when the clinician typed nothing.
const DefaultSubjective = "Patient presents with chief complaint requiring clinical evaluation."

// SystemPrompt returns the instructions and JSON schema for the SOAP note.
func SystemPrompt() string {
	return `You are a medical professional creating a SOAP note. Based on the provided information, generate a comprehensive but concise SOAP note.

Requirements:
- Create a properly structured SOAP note.
- Use appropriate medical terminology; include relevant normal and abnormal findings.
- Describe imaging objectively; base the assessment only on the data provided.
- Suggest follow-up when indicated.
- Output one valid JSON object only. No markdown, no commentary, no code fences.

Schema:
{
  "Subjective": "Patient presentation and chief complaint",
  "Objective": {
    "Vital_Signs": "Record if available, otherwise note not documented",
    "Physical_Examination": "Document examination findings",
    "Laboratory_Results": "Summarize key lab findings with values and interpretation",
    "Imaging_Studies": "Summarize imaging findings objectively"
  },
  "Assessment": "Clinical impression based on subjective and objective data",
  "Plan": {
    "Immediate": "Immediate interventions or treatments",
    "Follow_up": "Follow-up appointments and monitoring",
    "Patient_Education": "Education and counseling provided",
    "Additional_Studies": "Any additional tests or consultations needed"
  }
}`
}

// UserPrompt lays out the case data. labs is the rendered lab text; images is
// the number of images attached to the same message.
func UserPrompt(narrative, labs string, images int) string {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		narrative = DefaultSubjective
	}
	labs = strings.TrimSpace(labs)
	if labs == "" {
		labs = "No lab results provided"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SUBJECTIVE:\n%s\n\n", narrative)
	fmt.Fprintf(&b, "OBJECTIVE DATA:\nLaboratory Results:\n%s\n\n", labs)
	b.WriteString("Imaging Findings:\n")
	if images == 0 {
		b.WriteString("No imaging studies provided\n")
	} else {
		fmt.Fprintf(&b, "%d medical image(s) attached. %s\n", images, ImagingInstructions)
	}
	b.WriteString("\nRespond with the JSON object per schema.")
	return b.String()
}
