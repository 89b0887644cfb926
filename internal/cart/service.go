package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/metrics"
	"github.com/google/uuid"
)

// snapshotLoader supplies product/deal snapshots from the catalog. The
// engine treats every result as an immutable read; stock and deal usage
// counters are owned elsewhere.
type snapshotLoader interface {
	GetProductSnapshot(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// AddItemInput is one add-to-cart intent from the UI.
type AddItemInput struct {
	ProductID    uuid.UUID
	SelectedSize *string
	Quantity     int
}

// View is what every cart operation returns to the caller: the cart after
// the mutation, totals re-derived from it, and any lines the operation
// removed so the UI can surface them.
type View struct {
	Cart    Cart
	Totals  Totals
	Removed []Line
}

// Service exposes the cart engine with persistence and snapshot wiring.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error)
	AddDealItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	Revalidate(ctx context.Context, sessionID string) (*View, error)
}

type service struct {
	store      Store
	loader     snapshotLoader
	reconciler Reconciler
	metrics    *metrics.CartMetrics
	now        func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, loader snapshotLoader, cartMetrics *metrics.CartMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if loader == nil {
		return nil, fmt.Errorf("snapshot loader required")
	}
	return &service{
		store:   store,
		loader:  loader,
		metrics: cartMetrics,
		now:     time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &View{Cart: current, Totals: ComputeTotals(current)}, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error) {
	return s.add(ctx, sessionID, input, false)
}

// AddDealItem requires the product's deal to be usable at add time; the
// deal id lands in the line's price snapshot so a later revalidation can
// detect the deal going away.
func (s *service) AddDealItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error) {
	return s.add(ctx, sessionID, input, true)
}

func (s *service) add(ctx context.Context, sessionID string, input AddItemInput, requireDeal bool) (*View, error) {
	op := "add_item"
	if requireDeal {
		op = "add_deal_item"
	}
	defer s.observe(op, s.now())

	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.loader.GetProductSnapshot(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	next, _, err := s.reconciler.Add(current, AddParams{
		Product:      product,
		SelectedSize: input.SelectedSize,
		Quantity:     input.Quantity,
		RequireDeal:  requireDeal,
	}, s.now())
	if err != nil {
		s.reject(err)
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, err
	}
	s.metrics.IncMutation(op)
	return &View{Cart: next, Totals: ComputeTotals(next)}, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*View, error) {
	defer s.observe("update_quantity", s.now())

	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := current.lineIndex(lineID)
	if idx < 0 {
		err := lineNotFound(lineID)
		s.reject(err)
		return nil, err
	}

	snap, err := s.snapshotFor(ctx, current)
	if err != nil {
		return nil, err
	}

	next, changed, err := s.reconciler.SetQuantity(current, lineID, quantity, snap, s.now())
	if err != nil {
		s.reject(err)
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, err
	}
	s.metrics.IncMutation("update_quantity")

	view := &View{Cart: next, Totals: ComputeTotals(next)}
	if changed.State == enums.CartLineStateRemoved {
		view.Removed = []Line{changed}
	}
	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, lineID uuid.UUID) (*View, error) {
	defer s.observe("remove_item", s.now())

	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := s.reconciler.Remove(current, lineID)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, err
	}
	s.metrics.IncMutation("remove_item")
	return &View{Cart: next, Totals: ComputeTotals(next)}, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	defer s.observe("clear", s.now())

	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.IncMutation("clear")
	return nil
}

// Revalidate re-runs every line against a freshly loaded snapshot. It is
// idempotent for a given snapshot; staleness it finds is a state change
// surfaced in the view, not an error.
func (s *service) Revalidate(ctx context.Context, sessionID string) (*View, error) {
	defer s.observe("revalidate", s.now())

	current, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshotFor(ctx, current)
	if err != nil {
		return nil, err
	}

	next, result, err := s.reconciler.Revalidate(current, snap, s.now())
	if err != nil {
		return nil, err
	}

	if result.Changed() {
		if err := s.store.Save(ctx, next); err != nil {
			return nil, err
		}
	}
	s.metrics.AddStaleLines(len(result.StaleLineIDs))

	return &View{
		Cart:    next,
		Totals:  ComputeTotals(next),
		Removed: result.RemovedLines,
	}, nil
}

func (s *service) snapshotFor(ctx context.Context, current Cart) (Snapshot, error) {
	ids := make([]uuid.UUID, 0, len(current.Lines))
	seen := map[uuid.UUID]struct{}{}
	for _, line := range current.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	if len(ids) == 0 {
		return Snapshot{}, nil
	}
	loaded, err := s.loader.GetProductSnapshots(ctx, ids)
	if err != nil {
		return nil, err
	}
	return Snapshot(loaded), nil
}

func (s *service) observe(op string, start time.Time) {
	s.metrics.ObserveDuration(op, time.Since(start))
}

func (s *service) reject(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejection(string(typed.Code()))
	}
}
