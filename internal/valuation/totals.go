package valuation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// VATRate is the fixed value-added tax rate (MVA) applied to netto.
	VATRate = decimal.RequireFromString("0.25")

	// GrossFactor is 1 + VATRate.
	GrossFactor = decimal.RequireFromString("1.25")
)

// Totals holds the derived amounts of a request.
// Values are unrounded; use FormatAmount for display.
type Totals struct {
	Netto decimal.Decimal
	VAT   decimal.Decimal
	Total decimal.Decimal
}

// plainPrice accepts positional decimals only. Exponent notation is refused
// and the digit counts are bounded so a short input cannot expand into an
// arbitrarily long amount.
var plainPrice = regexp.MustCompile(`^[+-]?(\d{1,15}(\.\d{0,18})?|\.\d{1,18})$`)

// ParsePrice coerces a unit price string to a decimal.
// A blank price counts as zero. Negative, non-numeric and exponent-notation
// prices are rejected, as are prices with more than 15 integer or 18
// fractional digits.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if !plainPrice.MatchString(s) {
		return decimal.Zero, errPriceFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return d, nil
}

var (
	errNegativePrice = errors.New("price must not be negative")
	errPriceFormat   = errors.New("price must be a plain decimal number")
)

// ComputeTotals sums the item prices and derives vat and total from the
// unrounded sum. Both derived values are computed independently from netto,
// so Total equals Netto + VAT exactly.
func ComputeTotals(items []Item) (Totals, error) {
	netto := decimal.Zero
	for i, it := range items {
		price, err := ParsePrice(it.UnitPrice)
		if err != nil {
			return Totals{}, &CompositionError{
				ItemID:  it.ID,
				Index:   i,
				Message: "invalid price " + strconv.Quote(it.UnitPrice),
				Err:     err,
			}
		}
		netto = netto.Add(price)
	}
	return Totals{
		Netto: netto,
		VAT:   netto.Mul(VATRate),
		Total: netto.Mul(GrossFactor),
	}, nil
}

// FormatAmount renders an amount with exactly two decimals, rounding half
// away from zero. Rounding happens here and nowhere else.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
