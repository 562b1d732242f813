package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/afrolatino/storefront/internal/catalog"
	"github.com/afrolatino/storefront/internal/domain"
	"github.com/afrolatino/storefront/internal/pricing"
	"github.com/afrolatino/storefront/internal/stock"
)

// CatalogClient is the slice of the catalog API the handler needs to
// snapshot a product at add-to-cart time.
type CatalogClient interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// SettingsSource provides the delivery knobs for the cart summary's
// fee quote.
type SettingsSource interface {
	DeliverySettings(ctx context.Context) (pricing.Settings, error)
}

type Handler struct {
	store      *Store
	catalog    CatalogClient
	settings   SettingsSource
	fees       pricing.Calculator
	distanceKm int
	logger     *slog.Logger
}

func NewHandler(store *Store, catalog CatalogClient, settings SettingsSource, fees pricing.Calculator, distanceKm int, logger *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		catalog:    catalog,
		settings:   settings,
		fees:       fees,
		distanceKm: distanceKm,
		logger:     logger,
	}
}

type cartSummary struct {
	Cart        *domain.Cart `json:"cart"`
	Subtotal    int64        `json:"subtotal"`
	Count       int          `json:"count"`
	DeliveryFee int64        `json:"delivery_fee"`
	Total       int64        `json:"total"`
}

func (h *Handler) summarize(r *http.Request, cart *domain.Cart) cartSummary {
	settings, err := h.settings.DeliverySettings(r.Context())
	if err != nil {
		// The summary is a display surface; degrade to defaults
		// rather than failing the whole page.
		h.logger.Warn("using default delivery settings", "error", err)
		settings = pricing.DefaultSettings()
	}

	subtotal := cart.Subtotal()
	fee := h.fees.DeliveryFee(subtotal, h.distanceKm, settings)
	return cartSummary{
		Cart:        cart,
		Subtotal:    subtotal,
		Count:       cart.Count(),
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")
	if cartID == "" {
		h.writeError(w, http.StatusBadRequest, "missing cart id")
		return
	}

	cart, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "cart_id", cartID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.summarize(r, cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product_id")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to fetch product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	cart, err := h.store.AddItem(r.Context(), cartID, *product, req.Quantity)
	if err != nil {
		h.logger.Error("failed to add item", "error", err, "cart_id", cartID, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.summarize(r, cart))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")
	productID := r.PathValue("productId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.store.UpdateQuantity(r.Context(), cartID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			h.writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		h.logger.Error("failed to update quantity", "error", err, "cart_id", cartID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.summarize(r, cart))
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")
	productID := r.PathValue("productId")

	cart, err := h.store.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		h.logger.Error("failed to remove item", "error", err, "cart_id", cartID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.summarize(r, cart))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")

	cart, err := h.store.Clear(r.Context(), cartID)
	if err != nil {
		h.logger.Error("failed to clear cart", "error", err, "cart_id", cartID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.summarize(r, cart))
}

// HandleCheckoutReadiness runs the stock gate the cart page uses to
// decide whether the checkout button works.
func (h *Handler) HandleCheckoutReadiness(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")

	cart, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "cart_id", cartID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, stock.ValidateForCheckout(cart))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
