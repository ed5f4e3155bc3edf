package render

import (
	"strings"

	"github.com/roach88/valuer/internal/compose"
)

const textRule = "----------------------------------------"

// Text renders a document as plain text.
type Text struct{}

func (Text) Extension() string { return "txt" }

// Render lays out header, sections, totals and footer separated by blank lines.
func (Text) Render(tree compose.Tree) ([]byte, error) {
	var b strings.Builder

	b.WriteString(tree.Header.Title + "\n")
	if tree.Header.Subtitle != "" {
		b.WriteString(tree.Header.Subtitle + "\n")
	}

	for _, s := range tree.Sections {
		b.WriteString("\n" + s.Title + "\n")
		b.WriteString("  " + s.DescriptionLabel + ": " + indentContinuation(s.Description, "    ") + "\n")
		b.WriteString("  " + s.PriceLine() + "\n")
	}

	b.WriteString("\n" + textRule + "\n")
	for _, line := range tree.Totals.Lines() {
		b.WriteString(line + "\n")
	}

	if lines := tree.Footer.Issuer.ContactLines(); len(lines) > 0 {
		b.WriteString("\n" + textRule + "\n")
		for _, line := range lines {
			b.WriteString(line + "\n")
		}
	}

	return []byte(b.String()), nil
}

func indentContinuation(s, indent string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\n"+indent)
}
