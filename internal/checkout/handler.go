package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	orchestrator *Orchestrator
	distanceKm   int
	logger       *slog.Logger
}

func NewHandler(orchestrator *Orchestrator, distanceKm int, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		distanceKm:   distanceKm,
		logger:       logger,
	}
}

// HandleSubmit runs a checkout attempt for the cart in the path. Every
// failure maps back to an interactive state for the buyer: 4xx errors
// carry a code the UI switches on, 502 means retry.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("cartId")
	if cartID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_CART_ID", "missing cart id")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	req.CartID = cartID
	req.DistanceKm = h.distanceKm

	outcome, err := h.orchestrator.Submit(r.Context(), req)
	if err != nil {
		h.writeSubmitError(w, cartID, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, outcome)
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, cartID string, err error) {
	var validationErr *ValidationError
	var stockErr *StockConflictError
	var redirectErr *PaymentRedirectError
	var submissionErr *SubmissionError

	switch {
	case errors.Is(err, ErrEmptyCart):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error": "cart is empty",
			"code":  "EMPTY_CART",
		})
	case errors.Is(err, ErrSubmissionInProgress):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error": "a submission is already in progress for this cart",
			"code":  "SUBMISSION_IN_PROGRESS",
		})
	case errors.As(err, &validationErr):
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "please fill in all required fields",
			"code":           "VALIDATION_ERROR",
			"missing_fields": validationErr.Missing,
		})
	case errors.As(err, &stockErr):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"error":           "one or more items in your cart are out of stock",
			"code":            "HAS_OUT_OF_STOCK_ITEMS",
			"offending_items": stockErr.Items,
		})
	case errors.As(err, &redirectErr):
		// The order exists; tell the UI which one so it can offer a
		// payment retry instead of a resubmit.
		h.logger.Error("payment redirect failed", "error", err, "cart_id", cartID, "order_id", redirectErr.OrderID)
		h.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    "payment could not be started, please retry payment",
			"code":     "PAYMENT_REDIRECT_FAILED",
			"order_id": redirectErr.OrderID,
		})
	case errors.As(err, &submissionErr):
		h.logger.Error("order submission failed", "error", err, "cart_id", cartID)
		h.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "failed to create order, please try again",
			"code":  "SUBMISSION_FAILED",
		})
	default:
		h.logger.Error("checkout failed", "error", err, "cart_id", cartID)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "internal server error",
			"code":  "INTERNAL",
		})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]string{"error": message, "code": code})
}
