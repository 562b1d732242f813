package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/afrolatino/storefront/internal/catalog"
	"github.com/afrolatino/storefront/internal/domain"
	"github.com/afrolatino/storefront/internal/pricing"
)

type stubCatalog struct {
	products map[string]domain.Product
	err      error
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &product, nil
}

type stubSettings struct {
	settings pricing.Settings
	err      error
}

func (s *stubSettings) DeliverySettings(context.Context) (pricing.Settings, error) {
	if s.err != nil {
		return pricing.Settings{}, s.err
	}
	return s.settings, nil
}

func newHandlerFixture(t *testing.T) (*Handler, *Store, *stubCatalog, *stubSettings) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(NewMemoryRepository(), logger)
	cat := &stubCatalog{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Plantain chips", Price: 1000, Image: "/p1.jpg", Country: "DO"},
		"p2": {ID: "p2", Name: "Cassava bread", Price: 1299},
	}}
	settings := &stubSettings{settings: pricing.DefaultSettings()}
	handler := NewHandler(store, cat, settings, pricing.NewCalculator(pricing.PolicyThresholdBased), 8, logger)
	return handler, store, cat, settings
}

func pathRequest(method, target, cartID, productID, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.SetPathValue("cartId", cartID)
	if productID != "" {
		req.SetPathValue("productId", productID)
	}
	return req
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestHandleAddItem(t *testing.T) {
	handler, _, _, _ := newHandlerFixture(t)

	w := httptest.NewRecorder()
	handler.HandleAddItem(w, pathRequest(http.MethodPost, "/carts/c1/items", "c1", "", `{"product_id":"p1","quantity":2}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeSummary(t, w)
	if body["subtotal"] != float64(2000) {
		t.Errorf("expected subtotal 2000, got %v", body["subtotal"])
	}
	// 2000 is under the free-delivery threshold; 8km costs 1000 + 3*200.
	if body["delivery_fee"] != float64(1600) {
		t.Errorf("expected delivery fee 1600, got %v", body["delivery_fee"])
	}
	if body["total"] != float64(3600) {
		t.Errorf("expected total 3600, got %v", body["total"])
	}
}

func TestHandleAddItemDefaultsQuantityToOne(t *testing.T) {
	handler, store, _, _ := newHandlerFixture(t)

	w := httptest.NewRecorder()
	handler.HandleAddItem(w, pathRequest(http.MethodPost, "/carts/c1/items", "c1", "", `{"product_id":"p1"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	loaded, _ := store.Get(context.Background(), "c1")
	if loaded.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", loaded.Items[0].Quantity)
	}
}

func TestHandleAddItemUnknownProduct(t *testing.T) {
	handler, _, _, _ := newHandlerFixture(t)

	w := httptest.NewRecorder()
	handler.HandleAddItem(w, pathRequest(http.MethodPost, "/carts/c1/items", "c1", "", `{"product_id":"nope"}`))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandleAddItemCatalogDown(t *testing.T) {
	handler, _, cat, _ := newHandlerFixture(t)
	cat.err = errors.New("connection refused")

	w := httptest.NewRecorder()
	handler.HandleAddItem(w, pathRequest(http.MethodPost, "/carts/c1/items", "c1", "", `{"product_id":"p1"}`))

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestHandleUpdateQuantity(t *testing.T) {
	handler, store, _, _ := newHandlerFixture(t)
	seedCart(t, store, "c1", domain.Product{ID: "p1", Price: 1000}, 1)

	t.Run("updates the stored quantity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleUpdateQuantity(w, pathRequest(http.MethodPatch, "/carts/c1/items/p1", "c1", "p1", `{"quantity":3}`))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		loaded, _ := store.Get(context.Background(), "c1")
		if loaded.Items[0].Quantity != 3 {
			t.Errorf("expected quantity 3, got %d", loaded.Items[0].Quantity)
		}
	})

	t.Run("rejects a quantity below one", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleUpdateQuantity(w, pathRequest(http.MethodPatch, "/carts/c1/items/p1", "c1", "p1", `{"quantity":0}`))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		loaded, _ := store.Get(context.Background(), "c1")
		if loaded.Items[0].Quantity != 3 {
			t.Errorf("rejected update must not change the stored quantity, got %d", loaded.Items[0].Quantity)
		}
	})
}

func TestHandleRemoveItem(t *testing.T) {
	handler, store, _, _ := newHandlerFixture(t)
	seedCart(t, store, "c1", domain.Product{ID: "p1", Price: 1000}, 1)

	w := httptest.NewRecorder()
	handler.HandleRemoveItem(w, pathRequest(http.MethodDelete, "/carts/c1/items/p1", "c1", "p1", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	loaded, _ := store.Get(context.Background(), "c1")
	if !loaded.IsEmpty() {
		t.Errorf("expected empty cart, got %+v", loaded.Items)
	}
}

func TestHandleClear(t *testing.T) {
	handler, store, _, _ := newHandlerFixture(t)
	seedCart(t, store, "c1", domain.Product{ID: "p1", Price: 1000}, 2)

	w := httptest.NewRecorder()
	handler.HandleClear(w, pathRequest(http.MethodDelete, "/carts/c1", "c1", "", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeSummary(t, w)
	if body["subtotal"] != float64(0) || body["count"] != float64(0) {
		t.Errorf("expected an empty summary, got %v", body)
	}
}

func TestHandleGetUnknownCart(t *testing.T) {
	handler, _, _, _ := newHandlerFixture(t)

	w := httptest.NewRecorder()
	handler.HandleGet(w, pathRequest(http.MethodGet, "/carts/missing", "missing", "", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for an unknown cart, got %d", w.Code)
	}
	body := decodeSummary(t, w)
	if body["count"] != float64(0) {
		t.Errorf("expected an empty cart, got %v", body)
	}
}

func TestHandleGetDegradesToDefaultSettings(t *testing.T) {
	handler, store, _, settings := newHandlerFixture(t)
	seedCart(t, store, "c1", domain.Product{ID: "p1", Price: 1000}, 1)
	settings.err = errors.New("settings down")

	w := httptest.NewRecorder()
	handler.HandleGet(w, pathRequest(http.MethodGet, "/carts/c1", "c1", "", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	// Defaults quote the same fee schedule, so the page still renders.
	if body := decodeSummary(t, w); body["delivery_fee"] != float64(1600) {
		t.Errorf("expected default-quoted fee 1600, got %v", body["delivery_fee"])
	}
}

func TestHandleCheckoutReadiness(t *testing.T) {
	handler, store, _, _ := newHandlerFixture(t)

	t.Run("empty cart", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleCheckoutReadiness(w, pathRequest(http.MethodGet, "/carts/c1/checkout-readiness", "c1", "", ""))

		body := decodeSummary(t, w)
		if body["ok"] != false || body["reason"] != "EMPTY_CART" {
			t.Errorf("expected EMPTY_CART, got %v", body)
		}
	})

	t.Run("purchasable cart", func(t *testing.T) {
		seedCart(t, store, "c1", domain.Product{ID: "p1", Price: 1000}, 1)

		w := httptest.NewRecorder()
		handler.HandleCheckoutReadiness(w, pathRequest(http.MethodGet, "/carts/c1/checkout-readiness", "c1", "", ""))

		if body := decodeSummary(t, w); body["ok"] != true {
			t.Errorf("expected ok, got %v", body)
		}
	})
}

func seedCart(t *testing.T, store *Store, cartID string, product domain.Product, quantity int) {
	t.Helper()
	if _, err := store.AddItem(context.Background(), cartID, product, quantity); err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}
}
