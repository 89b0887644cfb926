package cart

// Totals aggregates the countable lines of a cart. Stale lines count at
// their clamped quantity. Totals are re-derived from the lines on every
// state change; no running total is ever persisted.
type Totals struct {
	TotalItems       int `json:"total_items"`
	TotalAmountCents int `json:"total_amount_cents"`
}

// ComputeTotals folds the cart's valid and stale lines into totals.
func ComputeTotals(c Cart) Totals {
	var totals Totals
	for _, line := range c.Lines {
		if !line.State.Counted() {
			continue
		}
		totals.TotalItems += line.Quantity
		totals.TotalAmountCents += line.Quantity * line.Pricing.UnitPriceCents
	}
	return totals
}
