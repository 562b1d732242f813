package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/afrolatino/storefront/internal/domain"
)

// PostgresRepository stores each cart as a single JSONB snapshot row.
// The upsert makes writes last-writer-wins at whole-cart granularity.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, id string) (*domain.Cart, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload
		FROM cart_snapshots
		WHERE cart_key = $1
	`, keyPrefix+id).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	cart := &domain.Cart{}
	if err := json.Unmarshal(payload, cart); err != nil {
		return nil, fmt.Errorf("decode cart snapshot %s: %w", id, err)
	}

	return cart, nil
}

func (r *PostgresRepository) Save(ctx context.Context, cart *domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart snapshot %s: %w", cart.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (cart_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, keyPrefix+cart.ID, payload, time.Now().UTC())
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_snapshots
		WHERE cart_key = $1
	`, keyPrefix+id)
	return err
}
