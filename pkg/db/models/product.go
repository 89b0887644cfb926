package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing. Stock is the flat inventory used
// when the product declares no size variants; sized products carry their
// inventory per SizeStock row instead.
type Product struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU       string         `gorm:"column:sku;not null"`
	Name      string         `gorm:"column:name;not null"`
	Subtitle  *string        `gorm:"column:subtitle"`
	BasePrice int            `gorm:"column:base_price;not null"`
	Stock     int            `gorm:"column:stock;not null;default:0"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	ImageURLs pq.StringArray `gorm:"column:image_urls;type:text[]"`
	Sizes     []SizeStock    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	// Deal is the current deal attached via deal_products, resolved by the
	// catalog repository rather than a GORM association.
	Deal *Deal `gorm:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasSizes reports whether the product sells in size variants.
func (p *Product) HasSizes() bool {
	return p != nil && len(p.Sizes) > 0
}
