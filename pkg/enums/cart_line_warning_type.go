package enums

import "fmt"

// CartLineWarningType enumerates warning reasons attached to cart lines.
type CartLineWarningType string

const (
	CartLineWarningTypeClampedToStock CartLineWarningType = "clamped_to_stock"
	CartLineWarningTypePriceChanged   CartLineWarningType = "price_changed"
	CartLineWarningTypeDealExpired    CartLineWarningType = "deal_expired"
	CartLineWarningTypeNotAvailable   CartLineWarningType = "not_available"
	CartLineWarningTypeSizeRemoved    CartLineWarningType = "size_removed"
)

var validCartLineWarningTypes = []CartLineWarningType{
	CartLineWarningTypeClampedToStock,
	CartLineWarningTypePriceChanged,
	CartLineWarningTypeDealExpired,
	CartLineWarningTypeNotAvailable,
	CartLineWarningTypeSizeRemoved,
}

// String implements fmt.Stringer.
func (c CartLineWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartLineWarningType) IsValid() bool {
	for _, candidate := range validCartLineWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartLineWarningType converts raw input into a CartLineWarningType.
func ParseCartLineWarningType(value string) (CartLineWarningType, error) {
	for _, candidate := range validCartLineWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart line warning type %q", value)
}
