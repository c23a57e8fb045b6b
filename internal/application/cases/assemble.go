package cases

import (
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/medcase/internal/application"
	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Assembler merges a validated submission into one inference request.
// It talks to neither the provider nor the case store.
type Assembler struct {
	IDs application.IDGenerator
}

// NewCaseID draws a fresh identifier from the configured generator.
func (a Assembler) NewCaseID() (domain.CaseID, error) {
	gen := a.IDs
	if gen == nil {
		gen = application.UUIDGenerator{}
	}
	id, err := gen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate case id: %w", err)
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("generate case id: empty identifier")
	}
	return domain.CaseID(id), nil
}

// Assemble builds the request. files must be the output of domain.Validate for sub;
// table and image order is preserved.
func (a Assembler) Assemble(sub domain.Submission, files []domain.ValidatedFile) (ai.Request, error) {
	id, err := a.NewCaseID()
	if err != nil {
		return ai.Request{}, err
	}

	req := ai.Request{CaseID: string(id)}
	narrative := strings.TrimSpace(sub.Text)

	for _, f := range files {
		switch f.Category {
		case domain.CategoryDocument:
			content, err := readDocument(f)
			if err != nil {
				return ai.Request{}, err
			}
			narrative += fmt.Sprintf("\n\n--- Content from %s ---\n%s", f.Name, content)
			req.TextFiles++
		case domain.CategoryTable:
			req.Tables = append(req.Tables, attachment(f))
		case domain.CategoryImage:
			req.Images = append(req.Images, attachment(f))
		}
	}

	req.Narrative = strings.TrimSpace(narrative)
	return req, nil
}

func attachment(f domain.ValidatedFile) ai.Attachment {
	return ai.Attachment{Name: f.Name, Extension: f.Extension, Size: f.Size, Open: f.Open}
}

// readDocument reads at most the category ceiling, so a file whose declared
// size was understated still cannot exceed it.
func readDocument(f domain.ValidatedFile) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("read %s: no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	defer rc.Close()

	limit := domain.Rules[domain.CategoryDocument].MaxBytes
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(b)) > limit {
		return "", &domain.FileError{
			File:     f.Name,
			Category: domain.CategoryDocument,
			Rule:     fmt.Sprintf("max size for %s is %d MiB", domain.CategoryDocument, limit/(1024*1024)),
			Err:      domain.ErrFileTooLarge,
		}
	}
	return string(b), nil
}
