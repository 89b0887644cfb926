package enums

import "fmt"

// DealKind enumerates the supported discount rule types.
type DealKind string

const (
	DealKindPercentage  DealKind = "percentage"
	DealKindFixedAmount DealKind = "fixed_amount"
	DealKindFlashSale   DealKind = "flash_sale"
)

var validDealKinds = []DealKind{
	DealKindPercentage,
	DealKindFixedAmount,
	DealKindFlashSale,
}

// String implements fmt.Stringer.
func (d DealKind) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DealKind) IsValid() bool {
	for _, candidate := range validDealKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDealKind converts raw input into a DealKind.
func ParseDealKind(value string) (DealKind, error) {
	for _, candidate := range validDealKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal kind %q", value)
}
