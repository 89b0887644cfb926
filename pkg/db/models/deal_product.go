package models

import (
	"time"

	"github.com/google/uuid"
)

// DealProduct associates a deal with a product. Price computation always
// resolves the deal through this association for the specific line's
// product.
type DealProduct struct {
	DealID    uuid.UUID `gorm:"column:deal_id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
