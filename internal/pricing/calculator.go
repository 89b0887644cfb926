package pricing

import (
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/internal/deals"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute derives the effective unit price for a base price and an
// optional deal. A deal that is not usable at the given instant prices the
// line at base, exactly as if no deal were attached.
//
// Base prices and discounts are carried in the currency's smallest unit;
// the discount percent is rounded to the nearest integer for display while
// the discount amount itself stays exact.
func Compute(basePriceCents int, deal *models.Deal, now time.Time) (types.PriceSnapshot, error) {
	if basePriceCents <= 0 {
		return types.PriceSnapshot{}, pkgerrors.New(pkgerrors.CodeInvalidPriceInput, "base price must be positive").
			WithDetails(map[string]any{"base_price": basePriceCents})
	}

	if deal == nil || !deals.Usable(deal, now) {
		return types.PriceSnapshot{UnitPriceCents: basePriceCents}, nil
	}

	base := decimal.NewFromInt(int64(basePriceCents))

	var discount decimal.Decimal
	var percent int
	switch deal.Kind {
	case enums.DealKindPercentage, enums.DealKindFlashSale:
		// Flash sales share the percentage arithmetic; they differ only in
		// merchandising.
		discount = base.Mul(deal.Value).Div(hundred).Round(0)
		percent = int(deal.Value.Round(0).IntPart())
	case enums.DealKindFixedAmount:
		discount = deal.Value.Round(0)
		if discount.GreaterThan(base) {
			discount = base
		}
		percent = int(discount.Div(base).Mul(hundred).Round(0).IntPart())
	default:
		return types.PriceSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown deal kind").
			WithDetails(map[string]any{"kind": deal.Kind.String()})
	}

	if discount.IsNegative() {
		discount = decimal.Zero
		percent = 0
	}
	if discount.GreaterThan(base) {
		discount = base
	}

	discountCents := int(discount.IntPart())
	unitPrice := basePriceCents - discountCents
	if unitPrice < 0 {
		unitPrice = 0
	}

	dealID := deal.ID
	return types.PriceSnapshot{
		UnitPriceCents:  unitPrice,
		AppliedDealID:   &dealID,
		DiscountCents:   discountCents,
		DiscountPercent: percent,
	}, nil
}
