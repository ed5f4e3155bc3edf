package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/roach88/valuer/internal/compose"
)

// Page geometry in millimetres.
const (
	pageMargin       = 18.0
	footerLineHeight = 4.5
	footerPadding    = 6.0
	logoHeight       = 14.0
	fontFamily       = "Helvetica"
)

// PDF renders a document onto A4 pages.
type PDF struct {
	created time.Time
}

// PDFOption configures a PDF renderer.
type PDFOption func(*PDF)

// WithCreationDate pins the creation and modification dates written into
// the document info dictionary. Two renders of the same tree with the same
// date produce identical bytes.
func WithCreationDate(t time.Time) PDFOption {
	return func(r *PDF) {
		r.created = t
	}
}

// NewPDF returns a PDF renderer. Without WithCreationDate the Unix epoch is used.
func NewPDF(opts ...PDFOption) *PDF {
	r := &PDF{created: time.Unix(0, 0).UTC()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PDF) Extension() string { return "pdf" }

// UnencodableError reports text the built-in PDF fonts cannot show. The core
// fonts cover Windows-1252 only; anything else would print as a dot.
type UnencodableError struct {
	Field string
	Rune  rune
}

func (e *UnencodableError) Error() string {
	return fmt.Sprintf("%s contains %q (%U), which the PDF fonts cannot represent", e.Field, e.Rune, e.Rune)
}

// checkEncodable returns an *UnencodableError for the first text of the tree
// outside Windows-1252.
func checkEncodable(tree compose.Tree) error {
	type field struct{ name, text string }
	fields := []field{
		{"title", tree.Header.Title},
		{"recipient", tree.Header.Subtitle},
	}
	for i, s := range tree.Sections {
		n := fmt.Sprintf("item %d", i+1)
		fields = append(fields,
			field{n + " name", s.Title},
			field{n + " description", s.DescriptionLabel + ": " + s.Description},
			field{n + " price", s.PriceLine()},
		)
	}
	for _, line := range tree.Totals.Lines() {
		fields = append(fields, field{"totals", line})
	}
	for _, line := range tree.Footer.Issuer.ContactLines() {
		fields = append(fields, field{"issuer", line})
	}

	for _, f := range fields {
		for _, r := range f.text {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return &UnencodableError{Field: f.name, Rune: r}
			}
		}
	}
	return nil
}

// Render lays out the tree and returns the PDF bytes.
func (r *PDF) Render(tree compose.Tree) ([]byte, error) {
	if err := checkEncodable(tree); err != nil {
		return nil, err
	}
	doc := r.layout(tree)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// footerHeight is the height of the region reserved at the bottom of
// every page: the contact block or the logo, whichever is taller.
func footerHeight(iss compose.Issuer) float64 {
	h := float64(len(iss.ContactLines())) * footerLineHeight
	if iss.LogoPath != "" && h < logoHeight {
		h = logoHeight
	}
	return h + 2*footerPadding
}

func (r *PDF) layout(tree compose.Tree) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(r.created)
	doc.SetModificationDate(r.created)
	doc.SetCatalogSort(true)
	doc.SetTitle(strings.TrimSpace(tree.Header.Title+" "+tree.Header.Subtitle), true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	iss := tree.Footer.Issuer
	reserved := footerHeight(iss)

	// Content that would run into the footer region moves to a new page.
	doc.SetAutoPageBreak(true, reserved)
	doc.SetFooterFunc(func() {
		r.drawFooter(doc, tr, iss, reserved)
	})

	doc.AddPage()

	doc.SetFont(fontFamily, "B", 20)
	doc.CellFormat(0, 10, tr(tree.Header.Title), "", 1, "L", false, 0, "")
	if tree.Header.Subtitle != "" {
		doc.SetFont(fontFamily, "", 12)
		doc.CellFormat(0, 7, tr(tree.Header.Subtitle), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	for _, s := range tree.Sections {
		doc.SetFont(fontFamily, "B", 13)
		doc.CellFormat(0, 7, tr(s.Title), "", 1, "L", false, 0, "")

		doc.SetFont(fontFamily, "", 11)
		doc.MultiCell(0, 5.5, tr(s.DescriptionLabel+": "+s.Description), "", "L", false)
		doc.CellFormat(0, 6, tr(s.PriceLine()), "", 1, "L", false, 0, "")
		doc.Ln(4)
	}

	pageW, _ := doc.GetPageSize()
	doc.Ln(2)
	y := doc.GetY()
	doc.SetDrawColor(120, 120, 120)
	doc.Line(pageMargin, y, pageW-pageMargin, y)
	doc.Ln(3)

	lines := tree.Totals.Lines()
	for i, line := range lines {
		style := ""
		if i == len(lines)-1 {
			style = "B"
		}
		doc.SetFont(fontFamily, style, 12)
		doc.CellFormat(0, 7, tr(line), "", 1, "R", false, 0, "")
	}

	return doc
}

func (r *PDF) drawFooter(doc *fpdf.Fpdf, tr func(string) string, iss compose.Issuer, reserved float64) {
	_, pageH := doc.GetPageSize()
	top := pageH - reserved + footerPadding

	if iss.LogoPath != "" {
		doc.ImageOptions(iss.LogoPath, pageMargin, top, 0, logoHeight, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	doc.SetY(top)
	doc.SetFont(fontFamily, "", 8)
	doc.SetTextColor(90, 90, 90)
	for _, line := range iss.ContactLines() {
		doc.CellFormat(0, footerLineHeight, tr(line), "", 1, "C", false, 0, "")
	}
	doc.SetTextColor(0, 0, 0)
}
