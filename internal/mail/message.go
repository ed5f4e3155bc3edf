package mail

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/roach88/valuer/internal/compose"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const defaultBodyTemplate = "templates/body.tpl"

// Message is an outgoing mail before it is handed to the compose window.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Subject returns "Valuation for {recipient}", or just "Valuation" when the
// recipient is blank.
func Subject(recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "Valuation"
	}
	return "Valuation for " + recipient
}

// Composer renders message bodies from a pongo2 template.
type Composer struct {
	tmpl *pongo2.Template
}

// NewComposer loads the body template. An empty path selects the built-in
// template; otherwise the file at path is used.
func NewComposer(path string) (*Composer, error) {
	var set *pongo2.TemplateSet
	name := defaultBodyTemplate
	if path == "" {
		set = pongo2.NewSet("mail", pongo2.NewFSLoader(templateFS))
	} else {
		loader, err := pongo2.NewLocalFileSystemLoader(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("mail template directory: %w", err)
		}
		set = pongo2.NewSet("mail", loader)
		name = filepath.Base(path)
	}

	tmpl, err := set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &Composer{tmpl: tmpl}, nil
}

// Compose builds the message announcing a published document: one line per
// item, the three totals, the link and the issuer signature.
func (c *Composer) Compose(tree compose.Tree, recipient, email, link string) (Message, error) {
	items := make([]string, len(tree.Sections))
	for i, s := range tree.Sections {
		items[i] = s.Title + ": " + s.Price + " " + s.Currency
	}

	ctx := pongo2.Context{
		"recipient":     strings.TrimSpace(recipient),
		"total":         tree.Totals.Total,
		"currency":      tree.Totals.Currency,
		"item_lines":    items,
		"totals_lines":  tree.Totals.Lines(),
		"link":          link,
		"contact_lines": tree.Footer.Issuer.ContactLines(),
	}

	var buf bytes.Buffer
	if err := c.tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return Message{}, fmt.Errorf("execute mail template: %w", err)
	}

	return Message{
		To:      email,
		Subject: Subject(recipient),
		Body:    strings.TrimRight(buf.String(), "\n"),
	}, nil
}
