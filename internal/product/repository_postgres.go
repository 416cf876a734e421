package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCachedProductQuery = `
		SELECT payload
		FROM product_cache
		WHERE ean = $1
	`
	upsertCachedProductQuery = `
		INSERT INTO product_cache (ean, payload, labels, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ean) DO UPDATE
		SET payload = EXCLUDED.payload,
			labels = EXCLUDED.labels,
			fetched_at = EXCLUDED.fetched_at
	`
	listCachedByLabelsQuery = `
		SELECT payload
		FROM product_cache
		WHERE labels && $1::text[]
		ORDER BY fetched_at DESC, ean
		LIMIT $2
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, ean string) (Product, error) {
	var payload []byte
	if err := r.db.QueryRowContext(ctx, getCachedProductQuery, ean).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	var p Product
	if err := json.Unmarshal(payload, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Put(ctx context.Context, p Product) error {
	if p.EAN == "" {
		return ErrInvalidEAN
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	labels := p.Labels
	if labels == nil {
		labels = []string{}
	}
	_, err = r.db.ExecContext(ctx, upsertCachedProductQuery, p.EAN, payload, pq.Array(labels), p.FetchedAt)
	return err
}

func (r *PostgresRepository) ListByLabels(ctx context.Context, labels []string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listCachedByLabelsQuery, pq.Array(labels), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var p Product
		if err := json.Unmarshal(payload, &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
