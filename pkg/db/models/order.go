package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
)

// Order is the persisted result of a successful checkout. It is the
// authoritative record behind stock decrements and deal usage increments.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID  string            `gorm:"column:session_id;not null"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Currency   enums.Currency    `gorm:"column:currency;not null;default:'IDR'"`
	TotalItems int               `gorm:"column:total_items;not null"`
	TotalCents int               `gorm:"column:total_cents;not null"`
	Lines      []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine snapshots one purchased product/size at its committed price.
type OrderLine struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	SelectedSize   *string    `gorm:"column:selected_size"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	DealID         *uuid.UUID `gorm:"column:deal_id;type:uuid"`
	DiscountCents  int        `gorm:"column:discount_cents;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
