package testutil

import (
	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/valuation"
)

// SampleRequest returns a three-item draft covering a named item, a blank
// item and an item with a short price. Its totals are 112.50 / 28.13 / 140.63.
func SampleRequest() valuation.Request {
	return valuation.Request{
		RecipientName:  "Nordby AS",
		RecipientEmail: "post@nordby.example",
		Items: []valuation.Item{
			{ID: "item-1", Name: "Desk", UnitPrice: "100.00", Description: "Solid oak desk"},
			{ID: "item-2"},
			{ID: "item-3", Name: "Lamp", UnitPrice: "12.5", Description: "Brass & glass"},
		},
	}
}

// SampleProfile returns the default profile with a filled issuer and no logo.
func SampleProfile() compose.Profile {
	p := compose.DefaultProfile()
	p.Issuer = compose.Issuer{
		Name:    "Example Appraisals",
		Address: "Storgata 1, 0155 Oslo",
		Phone:   "+47 000 00 000",
		Email:   "post@example.com",
		Website: "https://example.com",
	}
	return p
}

// SampleTree composes SampleRequest with SampleProfile. It panics on error,
// which only happens if the fixtures themselves are broken.
func SampleTree() compose.Tree {
	tree, err := compose.Compose(SampleRequest(), SampleProfile())
	if err != nil {
		panic(err)
	}
	return tree
}
