package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/afrolatino/storefront/internal/catalog"
	"github.com/afrolatino/storefront/internal/domain"
)

// CatalogClient is the slice of the catalog API the reconciler needs.
type CatalogClient interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// PriceDiscrepancy reports a line item whose add-time price snapshot
// no longer matches the live catalog price. The snapshot is kept;
// repricing is a product decision, not something to do silently.
type PriceDiscrepancy struct {
	ProductID     string `json:"product_id"`
	SnapshotPrice int64  `json:"snapshot_price"`
	LivePrice     int64  `json:"live_price"`
}

// Reconciler refreshes cart line items against live catalog data
// before checkout.
type Reconciler struct {
	catalog CatalogClient
	logger  *slog.Logger
}

func NewReconciler(catalog CatalogClient, logger *slog.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, logger: logger}
}

// Refresh merges the live in-stock flag into each cart row and
// collects price discrepancies. Products no longer present in the
// catalog are marked out of stock. The cart is mutated in place but
// not persisted here.
func (r *Reconciler) Refresh(ctx context.Context, cart *domain.Cart) ([]PriceDiscrepancy, error) {
	var discrepancies []PriceDiscrepancy
	notInStock := false

	for i := range cart.Items {
		li := &cart.Items[i]

		product, err := r.catalog.GetProduct(ctx, li.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				r.logger.Warn("cart item no longer in catalog", "product_id", li.ProductID)
				li.InStock = &notInStock
				continue
			}
			return nil, fmt.Errorf("refresh product %s: %w", li.ProductID, err)
		}

		li.InStock = product.InStock
		if product.Price != li.Price {
			discrepancies = append(discrepancies, PriceDiscrepancy{
				ProductID:     li.ProductID,
				SnapshotPrice: li.Price,
				LivePrice:     product.Price,
			})
		}
	}

	if len(discrepancies) > 0 {
		r.logger.Info("cart prices diverged from catalog", "cart_id", cart.ID, "count", len(discrepancies))
	}

	return discrepancies, nil
}
