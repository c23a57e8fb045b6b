package cases

import (
	"bytes"
	"io"
)

// Category groups uploaded files by their allowed extensions and size ceiling.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryTable    Category = "table"
	CategoryImage    Category = "image"
)

// FileRef is an uploaded file. Open is called lazily, only after validation passed.
type FileRef struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// BytesFile wraps an in-memory payload as a FileRef.
func BytesFile(name string, data []byte) FileRef {
	return FileRef{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Submission is the transient input bundle of one analyze operation.
type Submission struct {
	Text     string
	Document *FileRef
	Tables   []FileRef
	Images   []FileRef
}

// ValidatedFile is a FileRef that passed its category rules.
type ValidatedFile struct {
	FileRef
	Category  Category
	Extension string
}
