package cases

import (
	"fmt"
	"strings"
)

const mib = 1024 * 1024

// Rule is the policy of one category.
type Rule struct {
	Extensions []string
	MaxBytes   int64
}

// Rules is part of the external contract; every transport enforces the same table.
var Rules = map[Category]Rule{
	CategoryDocument: {Extensions: []string{"txt", "md", "rtf"}, MaxBytes: 10 * mib},
	CategoryTable:    {Extensions: []string{"pdf", "csv", "txt", "tsv"}, MaxBytes: 50 * mib},
	CategoryImage:    {Extensions: []string{"jpg", "jpeg", "png", "bmp", "tiff", "gif"}, MaxBytes: 20 * mib},
}

// Allows reports whether ext (lower-case, no dot) is accepted.
func (r Rule) Allows(ext string) bool {
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extension returns the lower-cased final dot-delimited segment of name,
// or "" when name has no dot.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Empty reports whether the submission carries no usable input at all.
func (s Submission) Empty() bool {
	return strings.TrimSpace(s.Text) == "" && s.Document == nil && len(s.Tables) == 0 && len(s.Images) == 0
}

// Validate checks every attached file against its category rules. It fails fast
// on the first violation in submission order: document, tables, then images.
func Validate(sub Submission) ([]ValidatedFile, error) {
	if sub.Empty() {
		return nil, ErrInvalidSubmission
	}

	out := make([]ValidatedFile, 0, len(sub.Tables)+len(sub.Images)+1)
	check := func(f FileRef, c Category) error {
		v, err := validateFile(f, c)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	}

	if sub.Document != nil {
		if err := check(*sub.Document, CategoryDocument); err != nil {
			return nil, err
		}
	}
	for _, f := range sub.Tables {
		if err := check(f, CategoryTable); err != nil {
			return nil, err
		}
	}
	for _, f := range sub.Images {
		if err := check(f, CategoryImage); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func validateFile(f FileRef, c Category) (ValidatedFile, error) {
	rule := Rules[c]
	if strings.TrimSpace(f.Name) == "" {
		return ValidatedFile{}, &FileError{Category: c, Rule: "filename required", Err: ErrUnsupportedFileType}
	}

	// size first, then type
	if f.Size > rule.MaxBytes {
		return ValidatedFile{}, &FileError{
			File:     f.Name,
			Category: c,
			Rule:     fmt.Sprintf("max size for %s is %d MiB", c, rule.MaxBytes/mib),
			Err:      ErrFileTooLarge,
		}
	}
	ext := Extension(f.Name)
	if !rule.Allows(ext) {
		return ValidatedFile{}, &FileError{
			File:     f.Name,
			Category: c,
			Rule:     fmt.Sprintf("allowed extensions for %s: %s", c, strings.Join(rule.Extensions, ", ")),
			Err:      ErrUnsupportedFileType,
		}
	}
	return ValidatedFile{FileRef: f, Category: c, Extension: ext}, nil
}
