package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/api/middleware"
	cartsvc "github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
)

type stubCart struct {
	cart  *cartsvc.CartDTO
	err   error
	added []uuid.UUID
}

func (s *stubCart) Get(context.Context, string) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCart) Lines(context.Context, string) ([]cartsvc.Line, error) {
	return nil, nil
}

func (s *stubCart) Add(_ context.Context, _ string, equipmentID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.added = append(s.added, equipmentID)
	return s.cart, s.err
}

func (s *stubCart) SetQuantity(context.Context, string, uuid.UUID, int) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCart) Remove(context.Context, string, uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCart) Clear(context.Context, string) error {
	return s.err
}

func withSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), uuid.NewString()))
}

func TestCartFetchSuccess(t *testing.T) {
	itemID := uuid.New()
	stub := &stubCart{cart: &cartsvc.CartDTO{Lines: []cartsvc.LineDTO{
		{Item: inventory.ItemDTO{ID: itemID, Name: "Tripod"}, Qty: 2},
	}}}
	handler := CartFetch(stub, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Lines) != 1 || envelope.Data.Lines[0].Item.ID != itemID {
		t.Fatalf("unexpected cart payload: %+v", envelope.Data)
	}
}

func TestCartFetchMissingSessionContext(t *testing.T) {
	handler := CartFetch(&stubCart{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemForwardsEquipmentID(t *testing.T) {
	stub := &stubCart{cart: &cartsvc.CartDTO{}}
	handler := CartAddItem(stub, nil)

	equipmentID := uuid.New()
	body := `{"equipment_id":"` + equipmentID.String() + `"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(stub.added) != 1 || stub.added[0] != equipmentID {
		t.Fatalf("expected add call with %s, got %v", equipmentID, stub.added)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCart{cart: &cartsvc.CartDTO{}}, nil)

	body := `{"equipment_id":"` + uuid.NewString() + `","qty":5}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartFetchPropagatesServiceError(t *testing.T) {
	handler := CartFetch(&stubCart{err: pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable")}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
