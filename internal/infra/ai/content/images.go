package content

import (
	"encoding/base64"
	"fmt"

	"github.com/h2non/filetype"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Inline is an image ready to embed in a provider message.
type Inline struct {
	Name string
	MIME string
	Data []byte
}

// DataURL encodes the image as a base64 data URL.
func (i Inline) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIME, base64.StdEncoding.EncodeToString(i.Data))
}

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"gif":  "image/gif",
}

// Image reads an image attachment and detects its MIME type from the content,
// falling back to the extension when the header is not recognised.
func Image(a ai.Attachment) (Inline, error) {
	data, err := readAll(a, domain.Rules[domain.CategoryImage].MaxBytes)
	if err != nil {
		return Inline{}, fmt.Errorf("read image %s: %w", a.Name, err)
	}
	if len(data) == 0 {
		return Inline{}, fmt.Errorf("read image %s: empty file", a.Name)
	}

	mime := mimeByExt[a.Extension]
	if kind, err := filetype.Match(data); err == nil && filetype.IsImage(data) {
		mime = kind.MIME.Value
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return Inline{Name: a.Name, MIME: mime, Data: data}, nil
}

// Images reads all image attachments in order.
func Images(atts []ai.Attachment) ([]Inline, error) {
	out := make([]Inline, 0, len(atts))
	for _, a := range atts {
		img, err := Image(a)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
