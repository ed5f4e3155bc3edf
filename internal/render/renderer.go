package render

import (
	"fmt"

	"github.com/roach88/valuer/internal/compose"
)

// Renderer converts a document tree into an artifact.
type Renderer interface {
	Render(tree compose.Tree) ([]byte, error)
	// Extension is the file extension without the dot.
	Extension() string
}

// Format names a renderer.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// New returns the renderer for a format.
func New(format Format, opts ...PDFOption) (Renderer, error) {
	switch format {
	case FormatPDF:
		return NewPDF(opts...), nil
	case FormatText:
		return Text{}, nil
	default:
		return nil, fmt.Errorf("unknown render format %q (want %q or %q)", format, FormatPDF, FormatText)
	}
}
