// Package store is the persistence boundary: catalog reads and order writes
// against Postgres. Nothing in here prices anything; it only moves validated
// payloads in and out.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-percetakan/internal/catalog"
	"github.com/noah-isme/backend-percetakan/internal/order"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// Store wraps a pgx pool with the queries this service needs. Product
// configuration (variants, matrix prices, finishing groups, wholesale rules,
// print modes) lives in a jsonb column; the matrix decoder accepts both the
// legacy flat shape and the material-keyed shape.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// ListProducts returns the full catalog.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("store not configured")
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, base_price, pricing_mode, config
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns one product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	if s == nil || s.Pool == nil {
		return catalog.Product{}, errors.New("store not configured")
	}
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, base_price, pricing_mode, config
		FROM products
		WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var (
		p       catalog.Product
		mode    string
		rawConf []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &mode, &rawConf); err != nil {
		return catalog.Product{}, err
	}
	parsed, err := pricing.ParseMode(mode)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	p.Mode = parsed
	if len(rawConf) > 0 {
		var conf struct {
			Variants        json.RawMessage `json:"variants"`
			MatrixPrices    json.RawMessage `json:"matrixPrices"`
			WholesaleRules  json.RawMessage `json:"wholesaleRules"`
			FinishingGroups json.RawMessage `json:"finishingGroups"`
			PrintModes      json.RawMessage `json:"printModes"`
			MinOrder        int             `json:"minOrder"`
		}
		if err := json.Unmarshal(rawConf, &conf); err != nil {
			return catalog.Product{}, fmt.Errorf("decode product config: %w", err)
		}
		p.MinOrder = conf.MinOrder
		if len(conf.Variants) > 0 {
			if err := json.Unmarshal(conf.Variants, &p.Variants); err != nil {
				return catalog.Product{}, fmt.Errorf("decode variants: %w", err)
			}
		}
		if len(conf.MatrixPrices) > 0 {
			if err := json.Unmarshal(conf.MatrixPrices, &p.Matrix); err != nil {
				return catalog.Product{}, fmt.Errorf("decode matrix prices: %w", err)
			}
		}
		if len(conf.WholesaleRules) > 0 {
			if err := json.Unmarshal(conf.WholesaleRules, &p.WholesaleRules); err != nil {
				return catalog.Product{}, fmt.Errorf("decode wholesale rules: %w", err)
			}
		}
		if len(conf.FinishingGroups) > 0 {
			if err := json.Unmarshal(conf.FinishingGroups, &p.FinishingGroups); err != nil {
				return catalog.Product{}, fmt.Errorf("decode finishing groups: %w", err)
			}
		}
		if len(conf.PrintModes) > 0 {
			if err := json.Unmarshal(conf.PrintModes, &p.PrintModes); err != nil {
				return catalog.Product{}, fmt.Errorf("decode print modes: %w", err)
			}
		}
	}
	return p, nil
}

// SaveOrder writes the order header and its items in one transaction. The
// payload arrives already validated and is stored verbatim.
func (s *Store) SaveOrder(ctx context.Context, o order.Order) error {
	if s == nil || s.Pool == nil {
		return errors.New("store not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, total, discount, paid, payment_status, customer, operator_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.Total, o.Discount, o.Paid, string(o.PaymentStatus), customer, o.OperatorID, o.Notes, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		dims, err := json.Marshal(it.Dimensions)
		if err != nil {
			return fmt.Errorf("encode dimensions: %w", err)
		}
		fins, err := json.Marshal(it.Finishings)
		if err != nil {
			return fmt.Errorf("encode finishings: %w", err)
		}
		meta, err := json.Marshal(it.Meta)
		if err != nil {
			return fmt.Errorf("encode meta: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, description, pricing_mode, qty, dimensions, finishings, unit_price, total_price, notes, meta)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			it.ID, o.ID, it.ProductID, it.Name, it.Description, string(it.Mode), it.Qty, dims, fins, it.UnitPrice, it.TotalPrice, it.Notes, meta,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit(ctx)
}
