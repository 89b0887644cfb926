package cart

import (
	"testing"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func activeDeal(kind enums.DealKind, value int64) *models.Deal {
	return &models.Deal{
		ID:        uuid.New(),
		Title:     "test deal",
		Kind:      kind,
		Value:     decimal.NewFromInt(value),
		StartDate: testNow.Add(-24 * time.Hour),
		EndDate:   testNow.Add(24 * time.Hour),
		Status:    enums.DealStatusActive,
	}
}

func simpleProduct(basePrice, stock int) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-1",
		Name:      "Kaos Polos",
		BasePrice: basePrice,
		Stock:     stock,
		IsActive:  true,
	}
}

func sizedProduct(basePrice int, sizes map[string]int) *models.Product {
	product := simpleProduct(basePrice, 0)
	for label, stock := range sizes {
		product.Sizes = append(product.Sizes, models.SizeStock{
			ID:        uuid.New(),
			ProductID: product.ID,
			Label:     label,
			Stock:     stock,
		})
	}
	return product
}

func ptr(s string) *string { return &s }

func TestAddValidLine(t *testing.T) {
	t.Parallel()

	product := simpleProduct(100000, 5)
	product.Deal = activeDeal(enums.DealKindPercentage, 20)

	var rec Reconciler
	cart, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 2}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(cart.Lines))
	}
	if line.State != enums.CartLineStateValid {
		t.Fatalf("expected valid state, got %s", line.State)
	}
	if line.Pricing.UnitPriceCents != 80000 {
		t.Fatalf("expected discounted unit price 80000, got %d", line.Pricing.UnitPriceCents)
	}
	if line.Pricing.AppliedDealID == nil || *line.Pricing.AppliedDealID != product.Deal.ID {
		t.Fatal("expected deal id on pricing snapshot")
	}
}

func TestAddRejectsOverStock(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 2)

	var rec Reconciler
	_, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 3}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStockExceeded) {
		t.Fatalf("expected stock exceeded, got %v", err)
	}
}

func TestAddRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	product.IsActive = false

	var rec Reconciler
	_, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 1}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddSizedProductRequiresSize(t *testing.T) {
	t.Parallel()

	product := sizedProduct(60000, map[string]int{"M": 3, "L": 0})

	var rec Reconciler
	_, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 1}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidSizeSelection) {
		t.Fatalf("expected invalid size selection, got %v", err)
	}

	_, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, SelectedSize: ptr(" m "), Quantity: 2}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.SelectedSize == nil || *line.SelectedSize != " m " {
		t.Fatalf("expected selected size preserved, got %v", line.SelectedSize)
	}

	_, _, err = rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, SelectedSize: ptr("L"), Quantity: 1}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStockExceeded) {
		t.Fatalf("expected stock exceeded for empty size, got %v", err)
	}
}

func TestAddRequireDealRejectsUnusableDeal(t *testing.T) {
	t.Parallel()

	product := simpleProduct(100000, 5)
	deal := activeDeal(enums.DealKindPercentage, 20)
	deal.EndDate = testNow.Add(-time.Hour)
	deal.StartDate = testNow.Add(-48 * time.Hour)
	product.Deal = deal

	var rec Reconciler
	_, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 1, RequireDeal: true}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDealNotUsable) {
		t.Fatalf("expected deal not usable, got %v", err)
	}

	product.Deal = nil
	_, _, err = rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 1, RequireDeal: true}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDealNotUsable) {
		t.Fatalf("expected deal not usable for missing deal, got %v", err)
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	original := Cart{SessionID: "s1"}

	var rec Reconciler
	next, _, err := rec.Add(original, AddParams{Product: product, Quantity: 1}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(original.Lines) != 0 {
		t.Fatal("input cart was mutated")
	}
	if len(next.Lines) != 1 {
		t.Fatal("result cart missing line")
	}
}

func TestSetQuantityClampsAndResolves(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	var rec Reconciler
	cart, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 2}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := SnapshotOf(product)

	cart, updated, err := rec.SetQuantity(cart, line.ID, 9, snap, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Quantity != 5 || updated.State != enums.CartLineStateStale {
		t.Fatalf("expected clamp to 5 stale, got qty %d state %s", updated.Quantity, updated.State)
	}
	if len(updated.Warnings) != 1 || updated.Warnings[0].Type != enums.CartLineWarningTypeClampedToStock {
		t.Fatalf("expected clamped_to_stock warning, got %+v", updated.Warnings)
	}

	// Choosing a quantity inside the bound resolves the staleness.
	cart, updated, err = rec.SetQuantity(cart, line.ID, 3, snap, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Quantity != 3 || updated.State != enums.CartLineStateValid {
		t.Fatalf("expected valid qty 3, got qty %d state %s", updated.Quantity, updated.State)
	}
	if len(updated.Warnings) != 0 {
		t.Fatalf("expected warnings cleared, got %+v", updated.Warnings)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	var rec Reconciler
	cart, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 2}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, removed, err := rec.SetQuantity(cart, line.ID, 0, SnapshotOf(product), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.State != enums.CartLineStateRemoved {
		t.Fatalf("expected removed state, got %s", removed.State)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected line pruned, got %d lines", len(cart.Lines))
	}
}

func TestSetQuantityUnknownLine(t *testing.T) {
	t.Parallel()

	var rec Reconciler
	_, _, err := rec.SetQuantity(Cart{SessionID: "s1"}, uuid.New(), 1, Snapshot{}, testNow)
	if !pkgerrors.HasCode(err, pkgerrors.CodeLineNotFound) {
		t.Fatalf("expected line not found, got %v", err)
	}
}

func TestRevalidateStockShrink(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 3)
	var rec Reconciler
	cart, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 3}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Another shopper bought two; only one unit is left.
	shrunk := *product
	shrunk.Stock = 1

	cart, result, err := rec.Revalidate(cart, SnapshotOf(&shrunk), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.StaleLineIDs) != 1 || result.StaleLineIDs[0] != line.ID {
		t.Fatalf("expected one stale line, got %+v", result.StaleLineIDs)
	}

	got := cart.Lines[0]
	if got.Quantity != 1 || got.State != enums.CartLineStateStale {
		t.Fatalf("expected clamped stale line, got qty %d state %s", got.Quantity, got.State)
	}

	totals := ComputeTotals(cart)
	if totals.TotalItems != 1 || totals.TotalAmountCents != 50000 {
		t.Fatalf("expected totals for one unit, got %+v", totals)
	}
}

func TestRevalidateDealExpiry(t *testing.T) {
	t.Parallel()

	product := simpleProduct(100000, 5)
	product.Deal = activeDeal(enums.DealKindPercentage, 20)

	var rec Reconciler
	cart, line, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 1}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Pricing.UnitPriceCents != 80000 {
		t.Fatalf("expected deal price 80000, got %d", line.Pricing.UnitPriceCents)
	}

	// The deal window closes while the cart sits idle.
	later := product.Deal.EndDate.Add(time.Hour)

	cart, result, err := rec.Revalidate(cart, SnapshotOf(product), later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.StaleLineIDs) != 1 {
		t.Fatalf("expected one stale line, got %+v", result.StaleLineIDs)
	}

	got := cart.Lines[0]
	if got.Pricing.UnitPriceCents != 100000 || got.Pricing.AppliedDealID != nil {
		t.Fatalf("expected reprice to base, got %+v", got.Pricing)
	}
	if got.State != enums.CartLineStateStale {
		t.Fatalf("expected stale state, got %s", got.State)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Type != enums.CartLineWarningTypeDealExpired {
		t.Fatalf("expected deal_expired warning, got %+v", got.Warnings)
	}
}

func TestRevalidateRemovesVanishedProductAndSize(t *testing.T) {
	t.Parallel()

	plain := simpleProduct(50000, 5)
	sized := sizedProduct(60000, map[string]int{"M": 3})

	var rec Reconciler
	cart, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: plain, Quantity: 1}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, _, err = rec.Add(cart, AddParams{Product: sized, SelectedSize: ptr("M"), Quantity: 1}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// plain is delisted entirely; sized drops the M variant.
	resized := *sized
	resized.Sizes = []models.SizeStock{{ID: uuid.New(), ProductID: sized.ID, Label: "XL", Stock: 2}}

	cart, result, err := rec.Revalidate(cart, SnapshotOf(&resized), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected all lines removed, got %d", len(cart.Lines))
	}
	if len(result.RemovedLines) != 2 {
		t.Fatalf("expected two removed lines reported, got %d", len(result.RemovedLines))
	}

	warnTypes := map[enums.CartLineWarningType]bool{}
	for _, removed := range result.RemovedLines {
		if removed.State != enums.CartLineStateRemoved {
			t.Fatalf("expected removed state, got %s", removed.State)
		}
		for _, warning := range removed.Warnings {
			warnTypes[warning.Type] = true
		}
	}
	if !warnTypes[enums.CartLineWarningTypeNotAvailable] || !warnTypes[enums.CartLineWarningTypeSizeRemoved] {
		t.Fatalf("expected not_available and size_removed warnings, got %+v", warnTypes)
	}
}

func TestRevalidateIdempotent(t *testing.T) {
	t.Parallel()

	product := simpleProduct(100000, 3)
	product.Deal = activeDeal(enums.DealKindFixedAmount, 30000)

	var rec Reconciler
	cart, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 3}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shrunk := *product
	shrunk.Stock = 2
	snap := SnapshotOf(&shrunk)

	first, firstResult, err := rec.Revalidate(cart, snap, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !firstResult.Changed() {
		t.Fatal("expected first pass to flag changes")
	}

	second, secondResult, err := rec.Revalidate(first, snap, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secondResult.Changed() {
		t.Fatalf("expected second pass to be a no-op, got %+v", secondResult)
	}
	if len(second.Lines) != 1 || second.Lines[0].Quantity != first.Lines[0].Quantity {
		t.Fatal("expected second pass to leave the cart unchanged")
	}
}

func TestRevalidateZeroStockKeepsLineAtZero(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 2)
	var rec Reconciler
	cart, _, err := rec.Add(Cart{SessionID: "s1"}, AddParams{Product: product, Quantity: 2}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	soldOut := *product
	soldOut.Stock = 0

	cart, result, err := rec.Revalidate(cart, SnapshotOf(&soldOut), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.StaleLineIDs) != 1 {
		t.Fatalf("expected one stale line, got %+v", result.StaleLineIDs)
	}

	got := cart.Lines[0]
	if got.Quantity != 0 {
		t.Fatalf("expected quantity clamped to zero, got %d", got.Quantity)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Type != enums.CartLineWarningTypeNotAvailable {
		t.Fatalf("expected not_available warning, got %+v", got.Warnings)
	}

	totals := ComputeTotals(cart)
	if totals.TotalItems != 0 || totals.TotalAmountCents != 0 {
		t.Fatalf("expected empty totals, got %+v", totals)
	}
}
