package compose

import "github.com/roach88/valuer/internal/valuation"

// Tree is the composed document. It is a value: renderers read it, nothing
// mutates it after Compose returns.
type Tree struct {
	Header   Header
	Sections []Section
	Totals   TotalsBlock
	Footer   Footer
}

// Header is the title block.
type Header struct {
	Title    string
	Subtitle string // "for {recipient}"
}

// Section describes one item.
type Section struct {
	Title            string
	DescriptionLabel string
	Description      string
	PriceLabel       string
	Price            string // two decimals
	Currency         string
}

// PriceLine returns "Price: 100.00 NOK".
func (s Section) PriceLine() string {
	return s.PriceLabel + ": " + s.Price + " " + s.Currency
}

// TotalsBlock carries the three display amounts, each rounded independently
// from the unrounded netto.
type TotalsBlock struct {
	NettoLabel string
	Netto      string
	VATLabel   string
	VAT        string
	TotalLabel string
	Total      string
	Currency   string
}

// Lines returns the three totals lines in display order.
func (t TotalsBlock) Lines() []string {
	return []string{
		t.NettoLabel + ": " + t.Netto + " " + t.Currency,
		t.VATLabel + ": " + t.VAT + " " + t.Currency,
		t.TotalLabel + ": " + t.Total + " " + t.Currency,
	}
}

// Footer is the static issuer block reserved at the bottom of every page.
type Footer struct {
	Issuer Issuer
}

// CanonicalMap converts the tree into the value tree accepted by
// valuation.MarshalCanonical. LogoPath is left out: it names a local file,
// not document content.
func (t Tree) CanonicalMap() map[string]any {
	sections := make([]any, len(t.Sections))
	for i, s := range t.Sections {
		sections[i] = map[string]any{
			"title":             s.Title,
			"description_label": s.DescriptionLabel,
			"description":       s.Description,
			"price_label":       s.PriceLabel,
			"price":             s.Price,
			"currency":          s.Currency,
		}
	}
	iss := t.Footer.Issuer
	return map[string]any{
		"header": map[string]any{
			"title":    t.Header.Title,
			"subtitle": t.Header.Subtitle,
		},
		"sections": sections,
		"totals": map[string]any{
			"netto_label": t.Totals.NettoLabel,
			"netto":       t.Totals.Netto,
			"vat_label":   t.Totals.VATLabel,
			"vat":         t.Totals.VAT,
			"total_label": t.Totals.TotalLabel,
			"total":       t.Totals.Total,
			"currency":    t.Totals.Currency,
		},
		"footer": map[string]any{
			"name":    iss.Name,
			"address": iss.Address,
			"phone":   iss.Phone,
			"email":   iss.Email,
			"website": iss.Website,
		},
	}
}

// Canonical returns the RFC 8785 canonical JSON of the tree.
func (t Tree) Canonical() ([]byte, error) {
	return valuation.MarshalCanonical(t.CanonicalMap())
}

// Fingerprint returns a content hash of the tree.
func (t Tree) Fingerprint() (string, error) {
	data, err := t.Canonical()
	if err != nil {
		return "", err
	}
	return valuation.Fingerprint(valuation.DomainDocument, data), nil
}
