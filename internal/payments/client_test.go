package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/afrolatino/storefront/internal/domain"
)

func TestCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/card/checkout/order-1":
			_, _ = w.Write([]byte(`{"url":"https://pay.example/card/abc"}`))
		case "/payments/wallet/checkout/order-1":
			_, _ = w.Write([]byte(`{"url":"https://pay.example/wallet/abc"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())

	t.Run("card", func(t *testing.T) {
		url, err := client.CheckoutSession(context.Background(), domain.PaymentMethodCard, "order-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://pay.example/card/abc" {
			t.Errorf("unexpected url %s", url)
		}
	})

	t.Run("wallet", func(t *testing.T) {
		url, err := client.CheckoutSession(context.Background(), domain.PaymentMethodWallet, "order-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://pay.example/wallet/abc" {
			t.Errorf("unexpected url %s", url)
		}
	})

	t.Run("cash has no hosted checkout", func(t *testing.T) {
		if _, err := client.CheckoutSession(context.Background(), domain.PaymentMethodCash, "order-1"); err == nil {
			t.Fatal("expected an error for cash")
		}
	})
}

func TestCheckoutSessionEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.CheckoutSession(context.Background(), domain.PaymentMethodCard, "order-1"); err == nil {
		t.Fatal("expected an error for a missing url")
	}
}
