package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmfebriyanto/tokotenan-backend/api/middleware"
	cartsvc "github.com/dmfebriyanto/tokotenan-backend/internal/cart"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/enums"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubCartService struct {
	view         *cartsvc.View
	err          error
	lastInput    cartsvc.AddItemInput
	lastLineID   uuid.UUID
	lastQuantity int
}

func (s *stubCartService) Get(ctx context.Context, sessionID string) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	s.lastInput = input
	return s.view, s.err
}

func (s *stubCartService) AddDealItem(ctx context.Context, sessionID string, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	s.lastInput = input
	return s.view, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.lastLineID = lineID
	s.lastQuantity = quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID string, lineID uuid.UUID) (*cartsvc.View, error) {
	s.lastLineID = lineID
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) error {
	return s.err
}

func (s *stubCartService) Revalidate(ctx context.Context, sessionID string) (*cartsvc.View, error) {
	return s.view, s.err
}

func withSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
}

func sampleView() *cartsvc.View {
	return &cartsvc.View{
		Cart: cartsvc.Cart{
			SessionID: "sess-1",
			Lines: []cartsvc.Line{{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Quantity:  2,
				State:     enums.CartLineStateValid,
				Pricing:   types.PriceSnapshot{UnitPriceCents: 80000},
			}},
		},
		Totals: cartsvc.Totals{TotalItems: 2, TotalAmountCents: 160000},
	}
}

func TestCartFetchSuccess(t *testing.T) {
	handler := CartFetch(&stubCartService{view: sampleView()}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Totals.TotalAmountCents != 160000 {
		t.Fatalf("unexpected totals: %+v", envelope.Data.Totals)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	handler := CartAddItem(svc, nil)

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":2}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastInput.ProductID != productID || svc.lastInput.Quantity != 2 {
		t.Fatalf("unexpected input forwarded: %+v", svc.lastInput)
	}
}

func TestCartAddItemRejectsMissingQuantity(t *testing.T) {
	handler := CartAddItem(&stubCartService{view: sampleView()}, nil)

	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddDealItemSurfacesDealError(t *testing.T) {
	handler := CartAddDealItem(&stubCartService{err: pkgerrors.New(pkgerrors.CodeDealNotUsable, "deal is not active")}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/deal-items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeDealNotUsable) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestCartUpdateQuantityParsesLineID(t *testing.T) {
	svc := &stubCartService{view: sampleView()}
	handler := CartUpdateQuantity(svc, nil)

	lineID := uuid.New()
	body := `{"quantity":4}`
	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+lineID.String(), strings.NewReader(body)))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("lineID", lineID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastLineID != lineID || svc.lastQuantity != 4 {
		t.Fatalf("unexpected forwarded update: %s %d", svc.lastLineID, svc.lastQuantity)
	}
}

func TestCartUpdateQuantityRejectsBadLineID(t *testing.T) {
	handler := CartUpdateQuantity(&stubCartService{view: sampleView()}, nil)

	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", strings.NewReader(`{"quantity":1}`)))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("lineID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
