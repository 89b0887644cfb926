package cart

import (
	"context"
	"testing"

	"github.com/dmfebriyanto/tokotenan-backend/pkg/db/models"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/google/uuid"
)

type memoryStore struct {
	carts map[string]Cart
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: map[string]Cart{}}
}

func (m *memoryStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		return cart.Clone(), nil
	}
	return Cart{SessionID: sessionID}, nil
}

func (m *memoryStore) Save(ctx context.Context, cart Cart) error {
	m.carts[cart.SessionID] = cart.Clone()
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type stubLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s stubLoader) GetProductSnapshot(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s stubLoader) GetProductSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	found := make(map[uuid.UUID]*models.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			found[id] = product
		}
	}
	return found, nil
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *memoryStore, stubLoader) {
	t.Helper()

	loader := stubLoader{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		loader.products[product.ID] = product
	}
	store := newMemoryStore()

	svc, err := NewService(store, loader, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, store, loader
}

func TestServiceAddAndGet(t *testing.T) {
	t.Parallel()

	product := simpleProduct(75000, 4)
	svc, _, _ := newTestService(t, product)

	view, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Totals.TotalItems != 2 || view.Totals.TotalAmountCents != 150000 {
		t.Fatalf("unexpected totals: %+v", view.Totals)
	}

	got, err := svc.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Cart.Lines) != 1 || got.Cart.Lines[0].State != enums.CartLineStateValid {
		t.Fatalf("unexpected cart: %+v", got.Cart)
	}
}

func TestServiceAddUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceAddDealItemRequiresUsableDeal(t *testing.T) {
	t.Parallel()

	product := simpleProduct(100000, 4)
	svc, _, _ := newTestService(t, product)

	_, err := svc.AddDealItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDealNotUsable) {
		t.Fatalf("expected deal not usable, got %v", err)
	}

	product.Deal = activeDeal(enums.DealKindPercentage, 25)
	view, err := svc.AddDealItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Lines[0].Pricing.UnitPriceCents != 75000 {
		t.Fatalf("expected deal price 75000, got %d", view.Cart.Lines[0].Pricing.UnitPriceCents)
	}
}

func TestServiceUpdateQuantityRemovesOnZero(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	svc, _, _ := newTestService(t, product)

	view, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lineID := view.Cart.Lines[0].ID

	view, err = svc.UpdateQuantity(context.Background(), "sess-1", lineID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Cart.Lines))
	}
	if len(view.Removed) != 1 || view.Removed[0].ID != lineID {
		t.Fatalf("expected removed line reported, got %+v", view.Removed)
	}
}

func TestServiceRevalidatePersistsOnlyOnChange(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	svc, store, loader := newTestService(t, product)

	view, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing moved; the pass should find nothing to flag.
	view, err = svc.Revalidate(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Lines[0].State != enums.CartLineStateValid {
		t.Fatalf("expected line still valid, got %s", view.Cart.Lines[0].State)
	}

	// Stock drops under the line's quantity.
	shrunk := *product
	shrunk.Stock = 1
	loader.products[product.ID] = &shrunk

	view, err = svc.Revalidate(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Lines[0].State != enums.CartLineStateStale || view.Cart.Lines[0].Quantity != 1 {
		t.Fatalf("expected clamped stale line, got %+v", view.Cart.Lines[0])
	}
	if view.Totals.TotalItems != 1 {
		t.Fatalf("expected totals over clamped quantity, got %+v", view.Totals)
	}

	persisted := store.carts["sess-1"]
	if persisted.Lines[0].Quantity != 1 {
		t.Fatalf("expected clamp persisted, got %+v", persisted.Lines[0])
	}
}

func TestServiceRevalidateReportsRemovedLines(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	svc, _, loader := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delete(loader.products, product.ID)

	view, err := svc.Revalidate(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Cart.Lines))
	}
	if len(view.Removed) != 1 || view.Removed[0].ProductID != product.ID {
		t.Fatalf("expected removed line reported, got %+v", view.Removed)
	}
}

func TestServiceClear(t *testing.T) {
	t.Parallel()

	product := simpleProduct(50000, 5)
	svc, store, _ := newTestService(t, product)

	if _, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(context.Background(), "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.carts["sess-1"]; ok {
		t.Fatal("expected cart deleted from store")
	}
}

func TestNewServiceValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, stubLoader{}, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewService(newMemoryStore(), nil, nil); err == nil {
		t.Fatal("expected error for nil loader")
	}
}
