package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/internal/cart"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// snapshotLoader supplies fresh product/deal snapshots for the pre-commit
// validation pass.
type snapshotLoader interface {
	GetProductSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// stockCommitter applies the authoritative stock and deal usage writes
// inside the checkout transaction.
type stockCommitter interface {
	DecrementProductStock(ctx context.Context, productID uuid.UUID, quantity int) (int64, error)
	DecrementSizeStock(ctx context.Context, productID uuid.UUID, label string, quantity int) (int64, error)
	IncrementDealUsage(ctx context.Context, dealID uuid.UUID, quantity int, maxUses *int) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	WithTx(tx *gorm.DB) stockCommitter
}

// Service turns a fully valid cart into a persisted order.
type Service interface {
	Checkout(ctx context.Context, sessionID string) (*models.Order, error)
}

type service struct {
	store     cart.Store
	loader    snapshotLoader
	committer stockCommitter
	dbClient  *db.Client
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a checkout service instance.
func NewService(store cart.Store, loader snapshotLoader, committer stockCommitter, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if loader == nil {
		return nil, fmt.Errorf("snapshot loader required")
	}
	if committer == nil {
		return nil, fmt.Errorf("stock committer required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		store:     store,
		loader:    loader,
		committer: committer,
		dbClient:  dbClient,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Checkout re-validates every line against a fresh snapshot and commits
// the order atomically. Any staleness found at this point aborts with a
// state conflict; the shopper has to review the revalidated cart first.
func (s *service) Checkout(ctx context.Context, sessionID string) (*models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(current.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range current.Lines {
		if line.State != enums.CartLineStateValid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart has unresolved lines").
				WithDetails(map[string]any{"line_id": line.ID, "state": line.State})
		}
	}

	snap, err := s.freshSnapshot(ctx, current)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var reconciler cart.Reconciler
	revalidated, result, err := reconciler.Revalidate(current, snap, now)
	if err != nil {
		return nil, err
	}
	if result.Changed() {
		// Persist what the pass found so the next cart read shows it.
		if saveErr := s.store.Save(ctx, revalidated); saveErr != nil {
			return nil, saveErr
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart changed during checkout, review and retry").
			WithDetails(map[string]any{
				"stale_lines":   len(result.StaleLineIDs),
				"removed_lines": len(result.RemovedLines),
			})
	}

	order := buildOrder(sessionID, revalidated)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		committer := s.committer.WithTx(tx)
		for _, line := range revalidated.Lines {
			if err := s.commitLine(ctx, committer, snap, line); err != nil {
				return err
			}
		}
		return committer.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		// The order is committed; a lingering cart is recoverable.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to clear cart after checkout")
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    order.ID.String(),
			"total_cents": order.TotalCents,
		})
		s.logg.Info(logCtx, "checkout committed")
	}
	return order, nil
}

// commitLine applies the conditional stock decrement for one line. The
// guard lives in the UPDATE's WHERE clause, so a concurrent checkout that
// drained the stock first shows up as zero rows affected.
func (s *service) commitLine(ctx context.Context, committer stockCommitter, snap cart.Snapshot, line cart.Line) error {
	var (
		affected int64
		err      error
	)
	if line.SelectedSize != nil {
		affected, err = committer.DecrementSizeStock(ctx, line.ProductID, *line.SelectedSize, line.Quantity)
	} else {
		affected, err = committer.DecrementProductStock(ctx, line.ProductID, line.Quantity)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStockExceeded, "stock changed during checkout").
			WithDetails(map[string]any{"product_id": line.ProductID, "requested": line.Quantity})
	}

	if line.Pricing.AppliedDealID == nil {
		return nil
	}

	var maxUses *int
	if product, ok := snap[line.ProductID]; ok && product.Deal != nil && product.Deal.ID == *line.Pricing.AppliedDealID {
		maxUses = product.Deal.MaxUses
	}
	affected, err = committer.IncrementDealUsage(ctx, *line.Pricing.AppliedDealID, line.Quantity, maxUses)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment deal usage")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeDealNotUsable, "deal usage cap reached during checkout").
			WithDetails(map[string]any{"deal_id": *line.Pricing.AppliedDealID})
	}
	return nil
}

func (s *service) freshSnapshot(ctx context.Context, current cart.Cart) (cart.Snapshot, error) {
	ids := make([]uuid.UUID, 0, len(current.Lines))
	seen := map[uuid.UUID]struct{}{}
	for _, line := range current.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	loaded, err := s.loader.GetProductSnapshots(ctx, ids)
	if err != nil {
		return nil, err
	}
	return cart.Snapshot(loaded), nil
}

func buildOrder(sessionID string, validated cart.Cart) *models.Order {
	totals := cart.ComputeTotals(validated)
	order := &models.Order{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Status:     enums.OrderStatusPending,
		Currency:   enums.CurrencyIDR,
		TotalItems: totals.TotalItems,
		TotalCents: totals.TotalAmountCents,
	}
	for _, line := range validated.Lines {
		order.Lines = append(order.Lines, models.OrderLine{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      line.ProductID,
			SelectedSize:   line.SelectedSize,
			Quantity:       line.Quantity,
			UnitPriceCents: line.Pricing.UnitPriceCents,
			DealID:         line.Pricing.AppliedDealID,
			DiscountCents:  line.Pricing.DiscountCents,
		})
	}
	return order
}
