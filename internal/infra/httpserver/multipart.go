package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Form field names of the analyze request.
const (
	FieldText   = "text_input"
	FieldDoc    = "text_file"
	FieldTables = "table_files"
	FieldImages = "xray_images"
)

// parts up to this size stay in memory, larger ones spill to temp files
const multipartMemory = 32 << 20

// parseSubmission reads the multipart form into a Submission. cleanup removes
// spilled temp files and must run after the submission is no longer needed.
func parseSubmission(w http.ResponseWriter, req *http.Request, maxBytes int64) (domain.Submission, func(), error) {
	noop := func() {}
	if req.ContentLength > maxBytes {
		return domain.Submission{}, noop, fmt.Errorf("%w: limit is %d bytes", ErrRequestTooLarge, maxBytes)
	}
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes)

	err := req.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		// plain form posts may still carry text
		if err := req.ParseForm(); err != nil {
			return domain.Submission{}, noop, bodyError(err, maxBytes)
		}
		return domain.Submission{Text: req.PostFormValue(FieldText)}, noop, nil
	}
	if err != nil {
		return domain.Submission{}, noop, bodyError(err, maxBytes)
	}

	form := req.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	sub := domain.Submission{}
	if v := form.Value[FieldText]; len(v) > 0 {
		sub.Text = v[0]
	}
	switch fhs := form.File[FieldDoc]; len(fhs) {
	case 0:
	case 1:
		ref := fileRef(fhs[0])
		sub.Document = &ref
	default:
		cleanup()
		return domain.Submission{}, noop, fmt.Errorf("%w: %s accepts one file, got %d", domain.ErrInvalidSubmission, FieldDoc, len(fhs))
	}
	for _, fh := range form.File[FieldTables] {
		sub.Tables = append(sub.Tables, fileRef(fh))
	}
	for _, fh := range form.File[FieldImages] {
		sub.Images = append(sub.Images, fileRef(fh))
	}
	return sub, cleanup, nil
}

func fileRef(fh *multipart.FileHeader) domain.FileRef {
	return domain.FileRef{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func bodyError(err error, maxBytes int64) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("%w: limit is %d bytes", ErrRequestTooLarge, maxBytes)
	}
	return fmt.Errorf("%w: malformed form: %v", domain.ErrInvalidSubmission, err)
}
