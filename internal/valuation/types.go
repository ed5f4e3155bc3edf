package valuation

import "fmt"

// Item is a single line of a valuation request.
// Items are identified by ID; the other fields are free text edited by the operator.
type Item struct {
	ID          string `json:"id" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	UnitPrice   string `json:"unit_price" yaml:"unit_price"` // decimal string, blank counts as zero
	Description string `json:"description" yaml:"description"`
}

// Request is the draft an operator assembles before generating a document.
// Items are ordered; insertion order is the order of the document sections.
type Request struct {
	RecipientName  string `json:"recipient_name" yaml:"recipient_name"`
	RecipientEmail string `json:"recipient_email,omitempty" yaml:"recipient_email,omitempty"`
	Items          []Item `json:"items" yaml:"items"`
}

// Field names an editable field of an Item.
type Field string

const (
	FieldName        Field = "name"
	FieldPrice       Field = "price"
	FieldDescription Field = "description"
)

// Fields lists the editable item fields in display order.
var Fields = []Field{FieldName, FieldPrice, FieldDescription}

// ParseField converts user input into a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnknownField, s, Fields)
}

// NewItem returns a blank item with the given id.
func NewItem(id string) Item {
	return Item{ID: id}
}

// With returns a copy of the item with one field replaced.
func (it Item) With(field Field, value string) (Item, error) {
	switch field {
	case FieldName:
		it.Name = value
	case FieldPrice:
		it.UnitPrice = value
	case FieldDescription:
		it.Description = value
	default:
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return it, nil
}

// DefaultRequest returns the initial draft: no recipient and exactly one blank item.
func DefaultRequest(firstItemID string) Request {
	return Request{Items: []Item{NewItem(firstItemID)}}
}

// Clone returns a deep copy of the request. Item is a plain value type,
// so copying the slice is sufficient.
func (r Request) Clone() Request {
	out := r
	out.Items = make([]Item, len(r.Items))
	copy(out.Items, r.Items)
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func (r Request) IndexOf(id string) int {
	for i, it := range r.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants of a request.
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return &ValidationError{Message: MinimumItemsMessage}
	}
	seen := make(map[string]struct{}, len(r.Items))
	for i, it := range r.Items {
		if it.ID == "" {
			return &ValidationError{Message: fmt.Sprintf("item %d has no id", i+1)}
		}
		if _, dup := seen[it.ID]; dup {
			return &ValidationError{Message: fmt.Sprintf("duplicate item id %q", it.ID)}
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
