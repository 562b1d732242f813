package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/afrolatino/storefront/internal/domain"
)

func testOrder() *domain.Order {
	return &domain.Order{
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Plantain chips", Price: 1000, Quantity: 2},
		},
		DeliveryInfo: domain.DeliveryInfo{
			FirstName:  "Ama",
			LastName:   "Joseph",
			Email:      "ama@example.com",
			Phone:      "555-0100",
			Address:    "12 Main St",
			PostalCode: "E1A 1A1",
		},
		PaymentType:   domain.PaymentTypePayNow,
		PaymentMethod: domain.PaymentMethodCard,
		DeliveryFee:   1600,
		Total:         3600,
	}
}

func TestCreateOrder(t *testing.T) {
	var gotKey string
	var gotOrder domain.Order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotOrder); err != nil {
			t.Errorf("failed to decode order: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_id":"order-7"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	orderID, err := client.CreateOrder(context.Background(), testOrder(), "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderID != "order-7" {
		t.Errorf("expected order-7, got %s", orderID)
	}
	if gotKey != "key-1" {
		t.Errorf("expected idempotency key on the request, got %q", gotKey)
	}
	if gotOrder.Total != 3600 || len(gotOrder.Items) != 1 {
		t.Errorf("unexpected order payload: %+v", gotOrder)
	}
}

func TestCreateOrderFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "missing order id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, server.Client())
			if _, err := client.CreateOrder(context.Background(), testOrder(), "key-1"); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
