package catalog

import (
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SizeDTO is one size variant on a product read.
type SizeDTO struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// DealDTO is the storefront read shape for a deal. EffectiveStatus is
// computed at read time; Status is the stored administrator value.
type DealDTO struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Kind            enums.DealKind   `json:"kind"`
	Value           decimal.Decimal  `json:"value"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	MaxUses         *int             `json:"max_uses,omitempty"`
	UsedCount       int              `json:"used_count"`
	Status          enums.DealStatus `json:"status"`
	EffectiveStatus enums.DealStatus `json:"effective_status"`
}

// ProductDTO is the storefront read shape for a product. Pricing is the
// current quote including any usable deal.
type ProductDTO struct {
	ID        uuid.UUID           `json:"id"`
	SKU       string              `json:"sku"`
	Name      string              `json:"name"`
	Subtitle  *string             `json:"subtitle,omitempty"`
	BasePrice int                 `json:"base_price_cents"`
	Stock     int                 `json:"stock"`
	IsActive  bool                `json:"is_active"`
	ImageURLs []string            `json:"image_urls,omitempty"`
	Sizes     []SizeDTO           `json:"sizes,omitempty"`
	Deal      *DealDTO            `json:"deal,omitempty"`
	Pricing   types.PriceSnapshot `json:"pricing"`
	CreatedAt time.Time           `json:"created_at"`
}

// ProductListResult is one page of products plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func toSizeDTOs(sizes []models.SizeStock) []SizeDTO {
	if len(sizes) == 0 {
		return nil
	}
	out := make([]SizeDTO, 0, len(sizes))
	for _, size := range sizes {
		out = append(out, SizeDTO{Label: size.Label, Stock: size.Stock})
	}
	return out
}
