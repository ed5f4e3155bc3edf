package compose

import (
	"fmt"
	"strings"

	"github.com/roach88/valuer/internal/valuation"
)

// Compose builds the document tree for a draft.
//
// Every price is parsed before anything is built; the first invalid price
// aborts with a *valuation.CompositionError. Totals are computed from the
// unrounded sum and each amount is rounded only for display.
func Compose(req valuation.Request, profile Profile) (Tree, error) {
	if len(req.Items) == 0 {
		return Tree{}, &valuation.CompositionError{Message: valuation.MinimumItemsMessage}
	}

	totals, err := valuation.ComputeTotals(req.Items)
	if err != nil {
		return Tree{}, err
	}

	p := profile.withDefaults()
	l := p.Labels

	tree := Tree{
		Header:   Header{Title: l.Title},
		Sections: make([]Section, len(req.Items)),
		Totals: TotalsBlock{
			NettoLabel: l.Netto,
			Netto:      valuation.FormatAmount(totals.Netto),
			VATLabel:   l.VAT,
			VAT:        valuation.FormatAmount(totals.VAT),
			TotalLabel: l.Total,
			Total:      valuation.FormatAmount(totals.Total),
			Currency:   p.Currency,
		},
		Footer: Footer{Issuer: p.Issuer},
	}
	if name := strings.TrimSpace(req.RecipientName); name != "" {
		tree.Header.Subtitle = strings.TrimSpace(l.RecipientPrefix + " " + name)
	}

	for i, it := range req.Items {
		// ComputeTotals already validated every price.
		price, _ := valuation.ParsePrice(it.UnitPrice)
		tree.Sections[i] = Section{
			Title:            sectionTitle(it, i, l),
			DescriptionLabel: l.Description,
			Description:      orDefault(it.Description, l.DescriptionMissing),
			PriceLabel:       l.Price,
			Price:            valuation.FormatAmount(price),
			Currency:         p.Currency,
		}
	}

	return tree, nil
}

func sectionTitle(it valuation.Item, index int, l Labels) string {
	if strings.TrimSpace(it.Name) != "" {
		return it.Name
	}
	if strings.Contains(l.ItemFallback, "%d") {
		return fmt.Sprintf(l.ItemFallback, index+1)
	}
	return fmt.Sprintf("%s %d", l.ItemFallback, index+1)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
