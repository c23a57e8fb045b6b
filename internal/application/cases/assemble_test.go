package cases

import (
	"errors"
	"io"
	"strings"
	"testing"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

func TestAssembler_Assemble(t *testing.T) {
	doc := domain.BytesFile("notes.txt", []byte("BP 150/95"))
	sub := domain.Submission{
		Text:     "  chest pain since morning  ",
		Document: &doc,
		Tables: []domain.FileRef{
			domain.BytesFile("cbc.csv", []byte("wbc,11")),
			domain.BytesFile("lipids.pdf", []byte("%PDF")),
		},
		Images: []domain.FileRef{domain.BytesFile("cxr.PNG", []byte("png"))},
	}
	files, err := domain.Validate(sub)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	a := Assembler{IDs: &seqIDs{ids: []string{"abc"}}}
	req, err := a.Assemble(sub, files)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if req.CaseID != "abc" {
		t.Errorf("CaseID = %q, want abc", req.CaseID)
	}
	wantNarrative := "chest pain since morning\n\n--- Content from notes.txt ---\nBP 150/95"
	if req.Narrative != wantNarrative {
		t.Errorf("Narrative = %q, want %q", req.Narrative, wantNarrative)
	}
	if req.TextFiles != 1 {
		t.Errorf("TextFiles = %d, want 1", req.TextFiles)
	}
	if len(req.Tables) != 2 || req.Tables[0].Name != "cbc.csv" || req.Tables[1].Name != "lipids.pdf" {
		t.Errorf("Tables order = %+v", req.Tables)
	}
	if len(req.Images) != 1 || req.Images[0].Extension != "png" {
		t.Errorf("Images = %+v", req.Images)
	}

	rc, err := req.Tables[0].Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "wbc,11" {
		t.Errorf("table content = %q", b)
	}
}

func TestAssembler_DocumentOnly(t *testing.T) {
	doc := domain.BytesFile("hpi.md", []byte("  history of present illness \n"))
	sub := domain.Submission{Document: &doc}
	files, err := domain.Validate(sub)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	req, err := Assembler{}.Assemble(sub, files)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !strings.HasPrefix(req.Narrative, "--- Content from hpi.md ---") {
		t.Errorf("Narrative = %q", req.Narrative)
	}
	if req.CaseID == "" {
		t.Error("CaseID is empty")
	}
}

func TestAssembler_DocumentUnderstatedSize(t *testing.T) {
	big := strings.Repeat("a", int(domain.Rules[domain.CategoryDocument].MaxBytes)+1)
	doc := domain.FileRef{
		Name: "huge.txt",
		Size: 10,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(big)), nil },
	}
	sub := domain.Submission{Document: &doc}
	files, err := domain.Validate(sub)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	_, err = Assembler{}.Assemble(sub, files)
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("Assemble() error = %v, want ErrFileTooLarge", err)
	}
}

type emptyIDs struct{}

func (emptyIDs) NewID() (string, error) { return " ", nil }

func TestAssembler_EmptyID(t *testing.T) {
	if _, err := (Assembler{IDs: emptyIDs{}}).NewCaseID(); err == nil {
		t.Fatal("NewCaseID() error = nil, want error for blank id")
	}
}
