package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	"github.com/google/uuid"
)

// CartLineWarning captures a warning attached to a cart line during
// validation or reconciliation.
type CartLineWarning struct {
	Type    enums.CartLineWarningType `json:"type"`
	Message string                    `json:"message"`
}

// CartLineWarnings is a slice marshaled as JSONB.
type CartLineWarnings []CartLineWarning

// Value serializes the warnings to JSON.
func (c CartLineWarnings) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the warning slice.
func (c *CartLineWarnings) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded CartLineWarnings
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// PriceSnapshot is the pricing cached on a cart line at its last
// validation pass. AppliedDealID is nil when the line prices at base.
type PriceSnapshot struct {
	UnitPriceCents  int        `json:"unit_price_cents"`
	AppliedDealID   *uuid.UUID `json:"applied_deal_id,omitempty"`
	DiscountCents   int        `json:"discount_cents"`
	DiscountPercent int        `json:"discount_percent"`
}

// Value serializes the snapshot to JSON.
func (p *PriceSnapshot) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan decodes a JSON object into the snapshot.
func (p *PriceSnapshot) Scan(value interface{}) error {
	if value == nil {
		*p = PriceSnapshot{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, p)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
