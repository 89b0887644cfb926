package checkout

import (
	"context"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository applies the authoritative checkout writes. Every decrement
// carries its guard in the WHERE clause so concurrent checkouts cannot
// oversell; callers interpret zero affected rows as a lost race.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a committer bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) stockCommitter {
	return &Repository{db: tx}
}

// DecrementProductStock subtracts quantity from the product's flat stock,
// guarded against going negative.
func (r *Repository) DecrementProductStock(ctx context.Context, productID uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// DecrementSizeStock subtracts quantity from one size variant's stock,
// guarded against going negative.
func (r *Repository) DecrementSizeStock(ctx context.Context, productID uuid.UUID, label string, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SizeStock{}).
		Where("product_id = ? AND UPPER(TRIM(label)) = UPPER(TRIM(?)) AND stock >= ?", productID, label, quantity).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// IncrementDealUsage bumps used_count, guarded by max_uses when the deal
// carries a cap.
func (r *Repository) IncrementDealUsage(ctx context.Context, dealID uuid.UUID, quantity int, maxUses *int) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", dealID)
	if maxUses != nil {
		query = query.Where("used_count + ? <= ?", quantity, *maxUses)
	}
	result := query.UpdateColumns(map[string]any{
		"used_count": gorm.Expr("used_count + ?", quantity),
		"updated_at": time.Now().UTC(),
	})
	return result.RowsAffected, result.Error
}

// CreateOrder inserts the order and its lines.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}
