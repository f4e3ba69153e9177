package qr

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

const defaultSize = 256

// Renderer turns pass payload text into an opaque scannable code.
type Renderer interface {
	Render(text string) (string, error)
}

// DataURLRenderer encodes the payload as a QR PNG wrapped in a data URL, the
// form stored on approved applications and embedded directly by clients.
type DataURLRenderer struct {
	size int
}

// Option configures the renderer.
type Option func(*DataURLRenderer)

// WithSize overrides the rendered image size in pixels.
func WithSize(size int) Option {
	return func(r *DataURLRenderer) {
		if size > 0 {
			r.size = size
		}
	}
}

// NewDataURLRenderer builds the default renderer.
func NewDataURLRenderer(opts ...Option) *DataURLRenderer {
	renderer := &DataURLRenderer{size: defaultSize}
	for _, opt := range opts {
		if opt != nil {
			opt(renderer)
		}
	}
	return renderer
}

// Render produces a data:image/png;base64 URL for the given payload text.
func (r *DataURLRenderer) Render(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payload text is required")
	}
	png, err := qrcode.Encode(text, qrcode.Medium, r.size)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode qr payload")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
