package cart

import (
	"fmt"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/internal/deals"
	"github.com/dmfebriyanto/tokotenan-backend/internal/inventory"
	"github.com/dmfebriyanto/tokotenan-backend/internal/pricing"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Snapshot is the product/deal view one validation pass runs against.
// Every line is validated against the same snapshot; the engine never
// mutates it or the counters inside it.
type Snapshot map[uuid.UUID]*models.Product

// SnapshotOf builds a snapshot from loaded products.
func SnapshotOf(products ...*models.Product) Snapshot {
	snap := make(Snapshot, len(products))
	for _, product := range products {
		if product != nil {
			snap[product.ID] = product
		}
	}
	return snap
}

// AddParams carries one add-to-cart intent.
type AddParams struct {
	Product      *models.Product
	SelectedSize *string
	Quantity     int

	// RequireDeal rejects the add outright when the product's deal is not
	// usable, instead of quietly pricing at base.
	RequireDeal bool
}

// RevalidateResult surfaces every state change a reconciliation pass made,
// so no line is ever demoted or dropped silently.
type RevalidateResult struct {
	StaleLineIDs []uuid.UUID
	RemovedLines []Line
}

// Changed reports whether the pass altered any line.
func (r RevalidateResult) Changed() bool {
	return len(r.StaleLineIDs) > 0 || len(r.RemovedLines) > 0
}

// Reconciler validates cart mutations against product/deal snapshots and
// keeps every line's cached pricing and quantity bound consistent. It is
// stateless and synchronous; all methods compute a next cart from the
// current one and return it without touching the input.
type Reconciler struct{}

// Add validates and appends a new line. The line passes through DRAFT
// internally and lands in VALID, or the add is rejected; an add never
// produces a clamped quantity.
func (Reconciler) Add(current Cart, params AddParams, now time.Time) (Cart, Line, error) {
	if params.Quantity <= 0 {
		return current, Line{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product := params.Product
	if product == nil || !product.IsActive {
		return current, Line{}, pkgerrors.New(pkgerrors.CodeNotFound, "product is not available")
	}

	if params.RequireDeal {
		if product.Deal == nil {
			return current, Line{}, pkgerrors.New(pkgerrors.CodeDealNotUsable, "product has no deal attached").
				WithDetails(map[string]any{"product_id": product.ID})
		}
		if !deals.Usable(product.Deal, now) {
			return current, Line{}, pkgerrors.New(pkgerrors.CodeDealNotUsable, "deal is not active").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"deal_id":    product.Deal.ID,
					"status":     deals.EffectiveStatus(product.Deal, now).String(),
				})
		}
	}

	bound, err := inventory.MaxQuantity(product, params.SelectedSize)
	if err != nil {
		return current, Line{}, err
	}
	if params.Quantity > bound {
		return current, Line{}, pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds stock").
			WithDetails(map[string]any{"product_id": product.ID, "available": bound, "requested": params.Quantity})
	}

	quote, err := pricing.Compute(product.BasePrice, product.Deal, now)
	if err != nil {
		return current, Line{}, err
	}

	line := Line{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  params.Quantity,
		State:     enums.CartLineStateDraft,
		Pricing:   quote,
	}
	if params.SelectedSize != nil && product.HasSizes() {
		size := *params.SelectedSize
		line.SelectedSize = &size
	}
	line.State = enums.CartLineStateValid

	next := current.Clone()
	next.Lines = append(next.Lines, line)
	return next, line, nil
}

// SetQuantity re-runs the stock bound for the line's product/size. A
// request above the bound clamps and marks the line STALE rather than
// failing; a non-positive quantity removes the line. Choosing a quantity
// within the bound resolves any prior staleness.
func (Reconciler) SetQuantity(current Cart, lineID uuid.UUID, quantity int, snap Snapshot, now time.Time) (Cart, Line, error) {
	idx := current.lineIndex(lineID)
	if idx < 0 {
		return current, Line{}, lineNotFound(lineID)
	}

	next := current.Clone()
	line := &next.Lines[idx]

	if quantity <= 0 {
		removed := line.Clone()
		removed.State = enums.CartLineStateRemoved
		next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
		return next, removed, nil
	}

	product, ok := snap[line.ProductID]
	if !ok {
		return current, Line{}, pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists").
			WithDetails(map[string]any{"product_id": line.ProductID})
	}

	bound, err := inventory.MaxQuantity(product, line.SelectedSize)
	if err != nil {
		return current, Line{}, err
	}

	if quantity > bound {
		line.Quantity = bound
		line.State = enums.CartLineStateStale
		line.Warnings = nil
		if bound > 0 {
			line.warn(enums.CartLineWarningTypeClampedToStock, fmt.Sprintf("quantity reduced to %d available", bound))
		} else {
			line.warn(enums.CartLineWarningTypeNotAvailable, "no stock remaining")
		}
		return next, *line, nil
	}

	line.Quantity = quantity
	line.State = enums.CartLineStateValid
	line.Warnings = nil
	return next, *line, nil
}

// Remove drops a line explicitly.
func (Reconciler) Remove(current Cart, lineID uuid.UUID) (Cart, error) {
	idx := current.lineIndex(lineID)
	if idx < 0 {
		return current, lineNotFound(lineID)
	}
	next := current.Clone()
	next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
	return next, nil
}

// Clear empties the cart.
func (Reconciler) Clear(current Cart) Cart {
	next := current.Clone()
	next.Lines = nil
	return next
}

// Revalidate re-derives every line's pricing and stock bound from the
// latest snapshot. Lines whose bound dropped below their quantity are
// clamped and demoted to STALE; lines whose price changed (typically a
// deal expiring) are repriced and demoted to STALE; lines whose product
// or size vanished are removed and reported. The pass is idempotent:
// repeating it with the same snapshot changes nothing further.
func (Reconciler) Revalidate(current Cart, snap Snapshot, now time.Time) (Cart, RevalidateResult, error) {
	next := current.Clone()
	result := RevalidateResult{}
	var errs error

	kept := next.Lines[:0]
	for i := range next.Lines {
		line := &next.Lines[i]

		product, ok := snap[line.ProductID]
		if !ok || product == nil || !product.IsActive {
			removed := line.Clone()
			removed.State = enums.CartLineStateRemoved
			removed.warn(enums.CartLineWarningTypeNotAvailable, "product no longer available")
			result.RemovedLines = append(result.RemovedLines, removed)
			continue
		}

		bound, err := inventory.MaxQuantity(product, line.SelectedSize)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeInvalidSizeSelection) {
				removed := line.Clone()
				removed.State = enums.CartLineStateRemoved
				removed.warn(enums.CartLineWarningTypeSizeRemoved, "selected size no longer offered")
				result.RemovedLines = append(result.RemovedLines, removed)
				continue
			}
			errs = multierr.Append(errs, err)
			kept = append(kept, *line)
			continue
		}

		quote, err := pricing.Compute(product.BasePrice, product.Deal, now)
		if err != nil {
			// Upstream data integrity problem; keep the line untouched and
			// report it alongside the rest of the pass.
			errs = multierr.Append(errs, err)
			kept = append(kept, *line)
			continue
		}

		changed := false

		if line.Quantity > bound {
			line.Quantity = bound
			if bound > 0 {
				line.warn(enums.CartLineWarningTypeClampedToStock, fmt.Sprintf("quantity reduced to %d available", bound))
			} else {
				line.warn(enums.CartLineWarningTypeNotAvailable, "no stock remaining")
			}
			changed = true
		}

		if !pricingEqual(quote, line.Pricing) {
			if line.Pricing.AppliedDealID != nil && quote.AppliedDealID == nil {
				line.warn(enums.CartLineWarningTypeDealExpired, "deal no longer applies, priced at base")
			} else {
				line.warn(enums.CartLineWarningTypePriceChanged,
					fmt.Sprintf("unit price changed from %d to %d", line.Pricing.UnitPriceCents, quote.UnitPriceCents))
			}
			line.Pricing = quote
			changed = true
		}

		if changed && line.State == enums.CartLineStateValid {
			line.State = enums.CartLineStateStale
		}
		if changed {
			result.StaleLineIDs = append(result.StaleLineIDs, line.ID)
		}

		kept = append(kept, *line)
	}
	next.Lines = kept

	return next, result, errs
}

// pricingEqual compares snapshots by value; AppliedDealID is a pointer so
// direct struct comparison would compare identity, not the deal.
func pricingEqual(a, b types.PriceSnapshot) bool {
	if a.UnitPriceCents != b.UnitPriceCents || a.DiscountCents != b.DiscountCents || a.DiscountPercent != b.DiscountPercent {
		return false
	}
	switch {
	case a.AppliedDealID == nil && b.AppliedDealID == nil:
		return true
	case a.AppliedDealID == nil || b.AppliedDealID == nil:
		return false
	default:
		return *a.AppliedDealID == *b.AppliedDealID
	}
}

func lineNotFound(lineID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeLineNotFound, "cart line not found").
		WithDetails(map[string]any{"line_id": lineID})
}
