package cases

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
)

var (
	ErrInvalidSubmission   = errors.New("at least one input (text, file, or image) is required")
	ErrUnsupportedFileType = errors.New("file type not supported")
	ErrFileTooLarge        = errors.New("file too large")
	ErrDuplicateCase       = errors.New("case already exists")
	ErrCaseNotFound        = errors.New("case not found")
)

// FileError names the offending file and the rule it violated.
type FileError struct {
	File     string
	Category Category
	Rule     string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.File, e.Err, e.Rule)
}

func (e *FileError) Unwrap() error { return e.Err }

// Kind is the externally visible failure class.
type Kind string

const (
	KindInvalidSubmission   Kind = "InvalidSubmission"
	KindUnsupportedFileType Kind = "UnsupportedFileType"
	KindFileTooLarge        Kind = "FileTooLarge"
	KindProviderTimeout     Kind = "ProviderTimeout"
	KindProviderRateLimited Kind = "ProviderRateLimited"
	KindProviderRejected    Kind = "ProviderRejected"
	KindProviderUnavailable Kind = "ProviderUnavailable"
	KindDuplicateCase       Kind = "DuplicateCase"
	KindCaseNotFound        Kind = "CaseNotFound"
	KindInternal            Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidSubmission, KindInvalidSubmission},
	{ErrUnsupportedFileType, KindUnsupportedFileType},
	{ErrFileTooLarge, KindFileTooLarge},
	{ai.ErrProviderTimeout, KindProviderTimeout},
	{ai.ErrProviderRateLimited, KindProviderRateLimited},
	{ai.ErrProviderRejected, KindProviderRejected},
	{ai.ErrProviderUnavailable, KindProviderUnavailable},
	{ErrDuplicateCase, KindDuplicateCase},
	{ErrCaseNotFound, KindCaseNotFound},
}

// KindOf classifies err; anything outside the taxonomy is KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
