package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/internal/deals"
	"github.com/dmfebriyanto/tokotenan-backend/internal/pricing"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog reads for the storefront and product/deal
// management for administrators.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)

	GetProductSnapshot(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListDeals(ctx context.Context) ([]DealDTO, error)
	CreateDeal(ctx context.Context, input CreateDealInput) (*DealDTO, error)
	UpdateDeal(ctx context.Context, id uuid.UUID, input UpdateDealInput) (*DealDTO, error)
	SetDealStatus(ctx context.Context, id uuid.UUID, status enums.DealStatus) (*DealDTO, error)
	DeleteDeal(ctx context.Context, id uuid.UUID) error
}

// SizeInput is one size variant on a product write.
type SizeInput struct {
	Label string
	Stock int
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU       string
	Name      string
	Subtitle  *string
	BasePrice int
	Stock     int
	IsActive  bool
	ImageURLs []string
	Sizes     []SizeInput
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	SKU       *string
	Name      *string
	Subtitle  *string
	BasePrice *int
	Stock     *int
	IsActive  *bool
	ImageURLs *[]string
	Sizes     *[]SizeInput
}

// CreateDealInput holds the validated payload to create a deal.
type CreateDealInput struct {
	Title      string
	Kind       enums.DealKind
	Value      decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	MaxUses    *int
	ProductIDs []uuid.UUID
}

// UpdateDealInput holds optional mutation values for a deal.
type UpdateDealInput struct {
	Title      *string
	Value      *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
	MaxUses    *int
	ProductIDs *[]uuid.UUID
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	products, err := s.repo.ListActiveProducts(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	var nextCursor *string
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		token := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		nextCursor = &token
	}

	if err := s.attachDeals(ctx, products); err != nil {
		return nil, err
	}

	result := &ProductListResult{NextCursor: nextCursor}
	for i := range products {
		result.Products = append(result.Products, s.toProductDTO(&products[i]))
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.GetProductSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := s.toProductDTO(product)
	return &dto, nil
}

// GetProductSnapshot loads one product with sizes and its resolved deal.
// The result is the immutable view cart validation runs against.
func (s *service) GetProductSnapshot(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	resolved, err := s.repo.DealsForProducts(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product deal")
	}
	product.Deal = resolved[id]
	return product, nil
}

// GetProductSnapshots loads a batch of products keyed by id. Missing ids
// are simply absent from the result; callers decide what absence means.
func (s *service) GetProductSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	products, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if err := s.attachDeals(ctx, products); err != nil {
		return nil, err
	}

	snapshot := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		snapshot[products[i].ID] = &products[i]
	}
	return snapshot, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:        uuid.New(),
		SKU:       strings.TrimSpace(input.SKU),
		Name:      strings.TrimSpace(input.Name),
		Subtitle:  input.Subtitle,
		BasePrice: input.BasePrice,
		Stock:     input.Stock,
		IsActive:  input.IsActive,
		ImageURLs: input.ImageURLs,
		Sizes:     toSizeStocks(uuid.Nil, input.Sizes),
	}
	for i := range product.Sizes {
		product.Sizes[i].ProductID = product.ID
	}

	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := s.toProductDTO(product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.SKU != nil {
		if strings.TrimSpace(*input.SKU) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Subtitle != nil {
		product.Subtitle = input.Subtitle
	}
	if input.BasePrice != nil {
		if *input.BasePrice <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.ImageURLs != nil {
		product.ImageURLs = *input.ImageURLs
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.Sizes != nil {
			if err := validateSizes(*input.Sizes); err != nil {
				return err
			}
			sizes := toSizeStocks(product.ID, *input.Sizes)
			if err := repo.ReplaceSizeStocks(ctx, product.ID, sizes); err != nil {
				return err
			}
			product.Sizes = sizes
		}
		// Save without clobbering the replaced size rows.
		return tx.WithContext(ctx).Omit("Sizes").Save(product).Error
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListDeals(ctx context.Context) ([]DealDTO, error) {
	found, err := s.repo.ListDeals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}
	now := s.now()
	out := make([]DealDTO, 0, len(found))
	for i := range found {
		out = append(out, toDealDTO(&found[i], now))
	}
	return out, nil
}

func (s *service) CreateDeal(ctx context.Context, input CreateDealInput) (*DealDTO, error) {
	deal := &models.Deal{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Kind:      input.Kind,
		Value:     input.Value,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		MaxUses:   input.MaxUses,
		Status:    enums.DealStatusActive,
	}
	if err := validateDeal(deal); err != nil {
		return nil, err
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateDeal(ctx, deal); err != nil {
			return err
		}
		if len(input.ProductIDs) > 0 {
			return repo.ReplaceDealProducts(ctx, deal.ID, input.ProductIDs)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
	}

	dto := toDealDTO(deal, s.now())
	return &dto, nil
}

func (s *service) UpdateDeal(ctx context.Context, id uuid.UUID, input UpdateDealInput) (*DealDTO, error) {
	deal, err := s.repo.FindDealByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}

	if input.Title != nil {
		deal.Title = strings.TrimSpace(*input.Title)
	}
	if input.Value != nil {
		deal.Value = *input.Value
	}
	if input.StartDate != nil {
		deal.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		deal.EndDate = *input.EndDate
	}
	if input.MaxUses != nil {
		deal.MaxUses = input.MaxUses
	}
	if err := validateDeal(deal); err != nil {
		return nil, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.UpdateDeal(ctx, deal); err != nil {
			return err
		}
		if input.ProductIDs != nil {
			return repo.ReplaceDealProducts(ctx, deal.ID, *input.ProductIDs)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal")
	}

	dto := toDealDTO(deal, s.now())
	return &dto, nil
}

// SetDealStatus applies the administrator override. Setting INACTIVE
// suppresses the deal everywhere regardless of its window.
func (s *service) SetDealStatus(ctx context.Context, id uuid.UUID, status enums.DealStatus) (*DealDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deal status").
			WithDetails(map[string]any{"status": status})
	}

	deal, err := s.repo.FindDealByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}

	deal.Status = status
	if _, err := s.repo.UpdateDeal(ctx, deal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
	}

	dto := toDealDTO(deal, s.now())
	return &dto, nil
}

func (s *service) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindDealByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if err := s.repo.DeleteDeal(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete deal")
	}
	return nil
}

func (s *service) attachDeals(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}
	resolved, err := s.repo.DealsForProducts(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product deals")
	}
	for i := range products {
		products[i].Deal = resolved[products[i].ID]
	}
	return nil
}

func (s *service) toProductDTO(product *models.Product) ProductDTO {
	now := s.now()
	dto := ProductDTO{
		ID:        product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Subtitle:  product.Subtitle,
		BasePrice: product.BasePrice,
		Stock:     product.Stock,
		IsActive:  product.IsActive,
		ImageURLs: product.ImageURLs,
		Sizes:     toSizeDTOs(product.Sizes),
		CreatedAt: product.CreatedAt,
	}
	if product.Deal != nil {
		deal := toDealDTO(product.Deal, now)
		dto.Deal = &deal
	}
	if quote, err := pricing.Compute(product.BasePrice, product.Deal, now); err == nil {
		dto.Pricing = quote
	}
	return dto
}

func toDealDTO(deal *models.Deal, now time.Time) DealDTO {
	return DealDTO{
		ID:              deal.ID,
		Title:           deal.Title,
		Kind:            deal.Kind,
		Value:           deal.Value,
		StartDate:       deal.StartDate,
		EndDate:         deal.EndDate,
		MaxUses:         deal.MaxUses,
		UsedCount:       deal.UsedCount,
		Status:          deal.Status,
		EffectiveStatus: deals.EffectiveStatus(deal, now),
	}
}

func toSizeStocks(productID uuid.UUID, inputs []SizeInput) []models.SizeStock {
	if len(inputs) == 0 {
		return nil
	}
	out := make([]models.SizeStock, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, models.SizeStock{
			ID:        uuid.New(),
			ProductID: productID,
			Label:     strings.ToUpper(strings.TrimSpace(input.Label)),
			Stock:     input.Stock,
		})
	}
	return out
}

func validateProductInput(input CreateProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BasePrice <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return validateSizes(input.Sizes)
}

func validateSizes(sizes []SizeInput) error {
	labels := map[string]struct{}{}
	for _, size := range sizes {
		label := strings.ToUpper(strings.TrimSpace(size.Label))
		if label == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "size label is required")
		}
		if size.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "size stock cannot be negative").
				WithDetails(map[string]any{"label": label})
		}
		if _, dup := labels[label]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate size label").
				WithDetails(map[string]any{"label": label})
		}
		labels[label] = struct{}{}
	}
	return nil
}

var percentCeiling = decimal.NewFromInt(100)

func validateDeal(deal *models.Deal) error {
	if deal.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "deal title is required")
	}
	if !deal.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid deal kind").
			WithDetails(map[string]any{"kind": deal.Kind})
	}
	if !deal.EndDate.After(deal.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "deal end date must be after start date")
	}
	if deal.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "deal value cannot be negative")
	}
	switch deal.Kind {
	case enums.DealKindPercentage, enums.DealKindFlashSale:
		if deal.Value.GreaterThan(percentCeiling) {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount percent cannot exceed 100").
				WithDetails(map[string]any{"value": deal.Value})
		}
	}
	if deal.MaxUses != nil && *deal.MaxUses <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max uses must be positive when set")
	}
	return nil
}
