package cart

import (
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/types"
	"github.com/google/uuid"
)

// Line is one product(+size) entry in a session cart. Pricing is the
// snapshot taken at the last validation pass; Quantity never exceeds the
// stock bound observed at that pass.
type Line struct {
	ID           uuid.UUID              `json:"id"`
	ProductID    uuid.UUID              `json:"product_id"`
	SelectedSize *string                `json:"selected_size,omitempty"`
	Quantity     int                    `json:"quantity"`
	State        enums.CartLineState    `json:"state"`
	Pricing      types.PriceSnapshot    `json:"pricing"`
	Warnings     types.CartLineWarnings `json:"warnings,omitempty"`
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	clone := l
	if l.SelectedSize != nil {
		size := *l.SelectedSize
		clone.SelectedSize = &size
	}
	if l.Pricing.AppliedDealID != nil {
		dealID := *l.Pricing.AppliedDealID
		clone.Pricing.AppliedDealID = &dealID
	}
	if l.Warnings != nil {
		clone.Warnings = append(types.CartLineWarnings{}, l.Warnings...)
	}
	return clone
}

func (l *Line) warn(warningType enums.CartLineWarningType, message string) {
	l.Warnings = append(l.Warnings, types.CartLineWarning{
		Type:    warningType,
		Message: message,
	})
}

// Cart is the session-scoped aggregate of lines, insertion order
// preserved for display.
type Cart struct {
	SessionID string `json:"session_id"`
	Lines     []Line `json:"lines"`
}

// Clone returns a deep copy of the cart. Mutating operations work on a
// clone and replace the whole aggregate, never patch in place.
func (c Cart) Clone() Cart {
	clone := Cart{SessionID: c.SessionID}
	if c.Lines != nil {
		clone.Lines = make([]Line, 0, len(c.Lines))
		for _, line := range c.Lines {
			clone.Lines = append(clone.Lines, line.Clone())
		}
	}
	return clone
}

func (c Cart) lineIndex(lineID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
