package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/valuer/internal/blob"
	"github.com/roach88/valuer/internal/dispatch"
	"github.com/roach88/valuer/internal/store"
	"github.com/roach88/valuer/internal/valuation"
)

// totalsView carries the three display amounts.
type totalsView struct {
	Netto    string `json:"netto"`
	VAT      string `json:"vat"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// draftView is the printable state of the draft.
type draftView struct {
	AddedID        string           `json:"added_id,omitempty"`
	RecipientName  string           `json:"recipient_name"`
	RecipientEmail string           `json:"recipient_email,omitempty"`
	Items          []valuation.Item `json:"items"`
	Totals         *totalsView      `json:"totals,omitempty"`
	Problem        string           `json:"problem,omitempty"` // why totals are missing
}

func newDraftView(req valuation.Request, currency string) draftView {
	v := draftView{
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Items:          req.Items,
	}
	totals, err := valuation.ComputeTotals(req.Items)
	if err != nil {
		v.Problem = err.Error()
		return v
	}
	v.Totals = &totalsView{
		Netto:    valuation.FormatAmount(totals.Netto),
		VAT:      valuation.FormatAmount(totals.VAT),
		Total:    valuation.FormatAmount(totals.Total),
		Currency: currency,
	}
	return v
}

func (v draftView) String() string {
	var b strings.Builder
	if v.AddedID != "" {
		fmt.Fprintf(&b, "Added item %s\n\n", v.AddedID)
	}

	recipient := v.RecipientName
	if recipient == "" {
		recipient = "(none)"
	}
	if v.RecipientEmail != "" {
		recipient += " <" + v.RecipientEmail + ">"
	}
	fmt.Fprintf(&b, "Recipient: %s\n\n", recipient)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tPRICE\tDESCRIPTION")
	for i, it := range v.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, it.ID, it.Name, it.UnitPrice, oneLine(it.Description))
	}
	tw.Flush()

	b.WriteString("\n")
	if v.Totals == nil {
		fmt.Fprintf(&b, "Totals unavailable: %s", v.Problem)
		return b.String()
	}
	fmt.Fprintf(&b, "Netto: %s %s\n", v.Totals.Netto, v.Totals.Currency)
	fmt.Fprintf(&b, "+ VAT (25%%): %s %s\n", v.Totals.VAT, v.Totals.Currency)
	fmt.Fprintf(&b, "Total: %s %s", v.Totals.Total, v.Totals.Currency)
	return b.String()
}

// deliveryView reports a completed dispatch.
type deliveryView struct {
	Mode        string     `json:"mode"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	ComposeURL  string     `json:"compose_url,omitempty"`
	Fingerprint string     `json:"fingerprint"`
	Totals      totalsView `json:"totals"`
}

func newDeliveryView(out *dispatch.Outcome) deliveryView {
	return deliveryView{
		Mode:        string(out.Mode),
		Name:        out.Name,
		Location:    out.Location,
		ComposeURL:  out.ComposeURL,
		Fingerprint: out.Fingerprint,
		Totals: totalsView{
			Netto:    out.Totals.Netto,
			VAT:      out.Totals.VAT,
			Total:    out.Totals.Total,
			Currency: out.Totals.Currency,
		},
	}
}

func (v deliveryView) String() string {
	if v.Mode == string(dispatch.Remote) {
		return fmt.Sprintf("Published %s\nLink: %s\nTotal: %s %s", v.Name, v.Location, v.Totals.Total, v.Totals.Currency)
	}
	return fmt.Sprintf("Saved %s\nTotal: %s %s", v.Location, v.Totals.Total, v.Totals.Currency)
}

// publishedView lists documents in the blob store.
type publishedView struct {
	Documents []blob.Object `json:"documents"`
}

func (v publishedView) String() string {
	if len(v.Documents) == 0 {
		return "No published documents."
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tNAME\tURL")
	for _, o := range v.Documents {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", formatStamp(o.CreatedAt), o.Name, o.URL)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// journalView lists recorded deliveries.
type journalView struct {
	Deliveries []store.Delivery `json:"deliveries"`
}

func (v journalView) String() string {
	if len(v.Deliveries) == 0 {
		return "No deliveries recorded."
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tMODE\tRECIPIENT\tTOTAL\tLOCATION")
	for _, d := range v.Deliveries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", formatStamp(d.CreatedAt), d.Mode, d.Recipient, d.Total, d.Location)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05Z")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
