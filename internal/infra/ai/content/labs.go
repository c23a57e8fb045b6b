// Package content turns uploaded attachments into something a model can read:
// lab files become text, images become inline payloads.
package content

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// maxPDFPages caps text extraction; lab reports rarely go past a few pages.
const maxPDFPages = 50

// RenderLabs renders every lab attachment in order. A file that cannot be read
// contributes an error line instead of failing the whole case.
func RenderLabs(ctx context.Context, labs []ai.Attachment) string {
	parts := make([]string, 0, len(labs))
	for _, a := range labs {
		if ctx.Err() != nil {
			break
		}
		text, err := RenderLab(a)
		if err != nil {
			parts = append(parts, fmt.Sprintf("Error processing %s: %v", a.Name, err))
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

// RenderLab renders one lab file as text, headed by its file name.
func RenderLab(a ai.Attachment) (string, error) {
	data, err := readAll(a, domain.Rules[domain.CategoryTable].MaxBytes)
	if err != nil {
		return "", err
	}

	var body string
	switch a.Extension {
	case "pdf":
		body, err = pdfText(data)
	case "csv":
		body, err = table(data, ',')
	case "tsv":
		body, err = table(data, '\t')
	default:
		body = strings.TrimSpace(string(data))
	}
	if err != nil {
		return "", err
	}
	if body == "" {
		body = "(no readable content)"
	}
	return fmt.Sprintf("Lab file %s:\n%s", a.Name, body), nil
}

func table(data []byte, sep rune) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse table: %w", err)
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n"), nil
}

func pdfText(data []byte) (text string, err error) {
	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	total := doc.NumPage()
	if total > maxPDFPages {
		total = maxPDFPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			fmt.Fprintf(&b, "Page %d:\n%s\n", i, s)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func readAll(a ai.Attachment, limit int64) ([]byte, error) {
	if a.Open == nil {
		return nil, fmt.Errorf("no content")
	}
	rc, err := a.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("exceeds %d bytes", limit)
	}
	return data, nil
}
