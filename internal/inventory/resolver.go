package inventory

import (
	"strings"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
)

// MaxQuantity returns the purchasable bound for a product, optionally
// narrowed to a size variant. The bound is advisory: the checkout service
// re-validates against authoritative stock when an order is committed.
//
// Sized products require a size selection; the label match is exact after
// case normalization. An unsized product ignores any provided size.
func MaxQuantity(product *models.Product, selectedSize *string) (int, error) {
	if product == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if !product.HasSizes() {
		return product.Stock, nil
	}

	if selectedSize == nil || strings.TrimSpace(*selectedSize) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidSizeSelection, "size selection is required").
			WithDetails(map[string]any{"product_id": product.ID})
	}

	label := normalizeLabel(*selectedSize)
	for _, entry := range product.Sizes {
		if normalizeLabel(entry.Label) == label {
			return entry.Stock, nil
		}
	}

	return 0, pkgerrors.New(pkgerrors.CodeInvalidSizeSelection, "size not offered for product").
		WithDetails(map[string]any{"product_id": product.ID, "size": *selectedSize})
}

func normalizeLabel(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
