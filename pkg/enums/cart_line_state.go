package enums

import "fmt"

// CartLineState tracks the validation state of a cart line.
type CartLineState string

const (
	CartLineStateDraft   CartLineState = "draft"
	CartLineStateValid   CartLineState = "valid"
	CartLineStateStale   CartLineState = "stale"
	CartLineStateRemoved CartLineState = "removed"
)

var validCartLineStates = []CartLineState{
	CartLineStateDraft,
	CartLineStateValid,
	CartLineStateStale,
	CartLineStateRemoved,
}

// String implements fmt.Stringer.
func (c CartLineState) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartLineState) IsValid() bool {
	for _, candidate := range validCartLineStates {
		if candidate == c {
			return true
		}
	}
	return false
}

// Counted reports whether lines in this state contribute to cart totals.
func (c CartLineState) Counted() bool {
	return c == CartLineStateValid || c == CartLineStateStale
}

// ParseCartLineState converts raw input into a CartLineState.
func ParseCartLineState(value string) (CartLineState, error) {
	for _, candidate := range validCartLineStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart line state %q", value)
}
