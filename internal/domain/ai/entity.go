package ai

import "io"

// Attachment references one uploaded file sent along with the narrative.
type Attachment struct {
	Name      string
	Extension string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// Request is the normalized payload handed to a Provider.
type Request struct {
	CaseID    string
	Narrative string
	Tables    []Attachment
	Images    []Attachment
	TextFiles int
}

// Output is the raw provider answer.
type Output struct {
	Text  string
	Model string
}

// FilesProcessed counts what was actually sent to the provider.
type FilesProcessed struct {
	LabFiles  int `json:"lab_files"`
	XrayFiles int `json:"xray_files"`
	TextFiles int `json:"text_files"`
}

// Metadata is the provenance attached to every result.
type Metadata struct {
	ProcessingMethod string         `json:"processing_method"`
	FilesProcessed   FilesProcessed `json:"files_processed"`
}

// Result is an immutable inference result.
type Result struct {
	Summary  string    `json:"summary"`
	SOAPNote *SOAPNote `json:"soap_note,omitempty"`
	Metadata Metadata  `json:"api_metadata"`
}

// SOAPNote is the structured note the prompt asks the model for.
type SOAPNote struct {
	Subjective string    `json:"Subjective"`
	Objective  Objective `json:"Objective"`
	Assessment string    `json:"Assessment"`
	Plan       Plan      `json:"Plan"`
}

type Objective struct {
	VitalSigns          string `json:"Vital_Signs"`
	PhysicalExamination string `json:"Physical_Examination"`
	LaboratoryResults   string `json:"Laboratory_Results"`
	ImagingStudies      string `json:"Imaging_Studies"`
}

type Plan struct {
	Immediate         string `json:"Immediate"`
	FollowUp          string `json:"Follow_up"`
	PatientEducation  string `json:"Patient_Education"`
	AdditionalStudies string `json:"Additional_Studies"`
}
