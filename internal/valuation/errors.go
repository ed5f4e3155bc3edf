package valuation

import (
	"errors"
	"fmt"
)

// MinimumItemsMessage is the user-visible notice when the last item would be removed.
const MinimumItemsMessage = "must have at least one item"

var (
	// ErrItemNotFound is returned when no item matches the given id.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownField is returned for field names outside Fields.
	ErrUnknownField = errors.New("unknown item field")
)

// ValidationError reports a rejected draft mutation. The draft is unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// CompositionError reports a request that cannot be turned into a document,
// e.g. a price that is not a non-negative number.
type CompositionError struct {
	ItemID  string
	Index   int // zero-based position of the offending item
	Message string
	Err     error
}

func (e *CompositionError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("composition: item %d (%s): %s", e.Index+1, e.ItemID, e.Message)
	}
	return "composition: " + e.Message
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCompositionError returns true if err is or wraps a CompositionError.
func IsCompositionError(err error) bool {
	var ce *CompositionError
	return errors.As(err, &ce)
}
