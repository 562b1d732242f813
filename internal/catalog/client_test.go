package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/p1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p1","name":"Plantain chips","price":1299,"in_stock":true,"country":"DO"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())

	product, err := client.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.ID != "p1" || product.Price != 1299 || product.Country != "DO" {
		t.Errorf("unexpected product: %+v", product)
	}
	if product.InStock == nil || !*product.InStock {
		t.Errorf("expected in_stock true, got %v", product.InStock)
	}

	if _, err := client.GetProduct(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetProductServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.GetProduct(context.Background(), "p1"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
