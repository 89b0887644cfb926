package catalog

import (
	"context"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together product and deal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProductByID loads the product with its size variants.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Sizes").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs loads multiple products with their size variants.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Sizes").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveProducts returns one page of active listings ordered newest
// first, cursor keyed on (created_at, id).
func (r *Repository) ListActiveProducts(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Sizes").
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts a new product row with its size variants.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product; size stocks cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// ReplaceSizeStocks replaces all size variants for the product.
func (r *Repository) ReplaceSizeStocks(ctx context.Context, productID uuid.UUID, sizes []models.SizeStock) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.SizeStock{}).Error; err != nil {
		return err
	}
	if len(sizes) == 0 {
		return nil
	}
	for i := range sizes {
		sizes[i].ProductID = productID
	}
	return tx.Create(&sizes).Error
}

// FindDealByID loads a deal row.
func (r *Repository) FindDealByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// ListDeals returns all deals ordered newest first.
func (r *Repository) ListDeals(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// CreateDeal inserts a new deal row.
func (r *Repository) CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// UpdateDeal updates an existing deal row.
func (r *Repository) UpdateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// DeleteDeal removes the deal and its product attachments.
func (r *Repository) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("deal_id = ?", id).Delete(&models.DealProduct{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Deal{}, "id = ?", id).Error
}

// ReplaceDealProducts replaces the set of products a deal attaches to.
func (r *Repository) ReplaceDealProducts(ctx context.Context, dealID uuid.UUID, productIDs []uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("deal_id = ?", dealID).Delete(&models.DealProduct{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}
	joins := make([]models.DealProduct, 0, len(productIDs))
	for _, productID := range productIDs {
		joins = append(joins, models.DealProduct{DealID: dealID, ProductID: productID})
	}
	return tx.Create(&joins).Error
}

// DealsForProducts resolves the current deal for each product through the
// deal_products join. When multiple deals attach to one product the most
// recently created attachment wins.
func (r *Repository) DealsForProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*models.Deal, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]*models.Deal{}, nil
	}

	var joins []models.DealProduct
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC").
		Find(&joins).Error; err != nil {
		return nil, err
	}
	if len(joins) == 0 {
		return map[uuid.UUID]*models.Deal{}, nil
	}

	dealIDs := make([]uuid.UUID, 0, len(joins))
	seen := map[uuid.UUID]struct{}{}
	for _, join := range joins {
		if _, ok := seen[join.DealID]; ok {
			continue
		}
		seen[join.DealID] = struct{}{}
		dealIDs = append(dealIDs, join.DealID)
	}

	var deals []models.Deal
	if err := r.db.WithContext(ctx).Where("id IN ?", dealIDs).Find(&deals).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Deal, len(deals))
	for i := range deals {
		byID[deals[i].ID] = &deals[i]
	}

	resolved := make(map[uuid.UUID]*models.Deal, len(productIDs))
	for _, join := range joins {
		if deal, ok := byID[join.DealID]; ok {
			// Later joins overwrite earlier ones; order is ASC by created_at.
			resolved[join.ProductID] = deal
		}
	}
	return resolved, nil
}

// IncrementDealUsage bumps used_count for the deal inside the caller's
// transaction. Returns gorm.ErrRecordNotFound semantics via RowsAffected
// checks at the call site.
func (r *Repository) IncrementDealUsage(ctx context.Context, dealID uuid.UUID, by int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", dealID).
		UpdateColumns(map[string]any{
			"used_count": gorm.Expr("used_count + ?", by),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
