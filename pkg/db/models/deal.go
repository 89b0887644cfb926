package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
)

// Deal is a time-boxed, optionally usage-capped discount rule attachable
// to one or more products. Status is the stored administrator value; the
// effective status at an instant is computed by the deals package.
// UsedCount is owned by checkout and only ever read here.
type Deal struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string           `gorm:"column:title;not null"`
	Kind      enums.DealKind   `gorm:"column:kind;not null"`
	Value     decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	StartDate time.Time        `gorm:"column:start_date;not null"`
	EndDate   time.Time        `gorm:"column:end_date;not null"`
	MaxUses   *int             `gorm:"column:max_uses"`
	UsedCount int              `gorm:"column:used_count;not null;default:0"`
	Status    enums.DealStatus `gorm:"column:status;not null;default:'active'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
