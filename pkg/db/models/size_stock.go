package models

import (
	"time"

	"github.com/google/uuid"
)

// SizeStock holds the remaining inventory for one size variant of a
// product. Labels are unique within a product.
type SizeStock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_size_stocks_product_label"`
	Label     string    `gorm:"column:label;not null;uniqueIndex:idx_size_stocks_product_label"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
