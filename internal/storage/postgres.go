package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// Postgres is a Store backed by three tables in a PostgreSQL database.
type Postgres struct {
	db *sqlx.DB
}

var _ Store = (*Postgres)(nil)

const lastSyncKey = "last_sync"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(14,2) NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		image_url TEXT NOT NULL DEFAULT '',
		in_stock BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS sync_state (
		key TEXT PRIMARY KEY,
		value TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS offline_queue (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		url TEXT NOT NULL,
		method TEXT NOT NULL,
		headers JSONB,
		body JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := NewPostgres(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgres wraps an existing connection. Call Migrate before first use on a fresh database.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) GetAllProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, brand, category, description, price, currency, image_url, in_stock
		FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

func (s *Postgres) SaveProduct(ctx context.Context, p catalog.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id required")
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO products (id, name, brand, category, description, price, currency, image_url, in_stock)
		VALUES (:id, :name, :brand, :category, :description, :price, :currency, :image_url, :in_stock)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			in_stock = EXCLUDED.in_stock`, p)
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return nil
}

func (s *Postgres) SetLastSyncTime(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, lastSyncKey, t.UTC())
	if err != nil {
		return fmt.Errorf("set last sync: %w", err)
	}
	return nil
}

func (s *Postgres) LastSyncTime(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := s.db.GetContext(ctx, &t, `SELECT value FROM sync_state WHERE key = $1`, lastSyncKey)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last sync: %w", err)
	}
	return t, nil
}

type queueRow struct {
	ID        string    `db:"id"`
	URL       string    `db:"url"`
	Method    string    `db:"method"`
	Headers   []byte    `db:"headers"`
	Body      []byte    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Postgres) GetQueuedRequests(ctx context.Context) ([]QueuedRequest, error) {
	var rows []queueRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, url, method, headers, body, created_at FROM offline_queue ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select queue: %w", err)
	}
	out := make([]QueuedRequest, 0, len(rows))
	for _, row := range rows {
		req := QueuedRequest{
			ID:        row.ID,
			URL:       row.URL,
			Method:    row.Method,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Headers) > 0 {
			if err := json.Unmarshal(row.Headers, &req.Headers); err != nil {
				return nil, fmt.Errorf("decode headers for %s: %w", row.ID, err)
			}
		}
		if len(row.Body) > 0 {
			req.Body = json.RawMessage(row.Body)
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *Postgres) Enqueue(ctx context.Context, req QueuedRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	var headers, body any
	if len(req.Headers) > 0 {
		encoded, err := json.Marshal(req.Headers)
		if err != nil {
			return fmt.Errorf("encode headers: %w", err)
		}
		headers = encoded
	}
	if req.HasBody() {
		body = []byte(req.Body)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offline_queue (id, url, method, headers, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.URL, req.Method, headers, body, req.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", req.ID, err)
	}
	return nil
}

func (s *Postgres) RemoveFromQueue(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM offline_queue WHERE id = $1`, id); err != nil {
		return fmt.Errorf("remove %s from queue: %w", id, err)
	}
	return nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}
