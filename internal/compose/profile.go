package compose

// Issuer is the static contact and branding block printed in the footer.
type Issuer struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	Website  string `yaml:"website"`
	LogoPath string `yaml:"logo_path"`
}

// ContactLines returns the non-empty contact fields in footer order.
func (i Issuer) ContactLines() []string {
	var lines []string
	for _, s := range []string{i.Name, i.Address, i.Phone, i.Email, i.Website} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// Labels holds the fixed texts of the document.
type Labels struct {
	Title              string `yaml:"title"`
	RecipientPrefix    string `yaml:"recipient_prefix"`
	ItemFallback       string `yaml:"item_fallback"` // formatted with the 1-based item index
	Description        string `yaml:"description"`
	DescriptionMissing string `yaml:"description_missing"`
	Price              string `yaml:"price"`
	Netto              string `yaml:"netto"`
	VAT                string `yaml:"vat"`
	Total              string `yaml:"total"`
}

// Profile is the static configuration a document is composed with.
type Profile struct {
	Currency string `yaml:"currency"`
	Labels   Labels `yaml:"labels"`
	Issuer   Issuer `yaml:"issuer"`
}

// DefaultLabels returns the English document texts.
func DefaultLabels() Labels {
	return Labels{
		Title:              "Valuation",
		RecipientPrefix:    "for",
		ItemFallback:       "Item %d",
		Description:        "Description",
		DescriptionMissing: "No description provided",
		Price:              "Price",
		Netto:              "Netto",
		VAT:                "+ VAT (25%)",
		Total:              "Total",
	}
}

// DefaultProfile returns a profile with default labels, NOK and an empty issuer.
func DefaultProfile() Profile {
	return Profile{Currency: "NOK", Labels: DefaultLabels()}
}

// withDefaults fills blank labels and currency from the defaults.
func (p Profile) withDefaults() Profile {
	d := DefaultLabels()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&p.Labels.Title, d.Title)
	fill(&p.Labels.RecipientPrefix, d.RecipientPrefix)
	fill(&p.Labels.ItemFallback, d.ItemFallback)
	fill(&p.Labels.Description, d.Description)
	fill(&p.Labels.DescriptionMissing, d.DescriptionMissing)
	fill(&p.Labels.Price, d.Price)
	fill(&p.Labels.Netto, d.Netto)
	fill(&p.Labels.VAT, d.VAT)
	fill(&p.Labels.Total, d.Total)
	fill(&p.Currency, "NOK")
	return p
}
