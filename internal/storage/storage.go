package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// Store is the local cache behind the product grid and the offline queue.
// Implementations serialize their own operations.
type Store interface {
	GetAllProducts(ctx context.Context) ([]catalog.Product, error)
	SaveProduct(ctx context.Context, p catalog.Product) error
	SetLastSyncTime(ctx context.Context, t time.Time) error
	LastSyncTime(ctx context.Context) (time.Time, error)

	GetQueuedRequests(ctx context.Context) ([]QueuedRequest, error)
	Enqueue(ctx context.Context, req QueuedRequest) error
	// RemoveFromQueue deletes the entry with id. Removing an absent id is not an error.
	RemoveFromQueue(ctx context.Context, id string) error

	Close() error
}

// QueuedRequest is a deferred network call captured while offline.
type QueuedRequest struct {
	ID        string            `json:"id" db:"id"`
	URL       string            `json:"url" db:"url"`
	Method    string            `json:"method" db:"method"`
	Headers   map[string]string `json:"headers,omitempty" db:"-"`
	Body      json.RawMessage   `json:"body,omitempty" db:"-"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
}

// HasBody reports whether the request carries a JSON body.
func (r QueuedRequest) HasBody() bool {
	trimmed := strings.TrimSpace(string(r.Body))
	return trimmed != "" && trimmed != "null"
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Config selects and configures a Store backend.
type Config struct {
	Driver    string
	Path      string // file driver
	DSN       string // postgres driver
	RedisAddr string // redis driver
	RedisDB   int
	KeyPrefix string // redis driver; defaults to "productlist"
}

// Open builds the Store named by cfg.Driver. An empty driver selects the file store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		return OpenFile(cfg.Path)
	case DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)
	}
}

func cloneRequest(r QueuedRequest) QueuedRequest {
	if r.Headers != nil {
		h := make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			h[k] = v
		}
		r.Headers = h
	}
	if r.Body != nil {
		r.Body = append(json.RawMessage(nil), r.Body...)
	}
	return r
}

func validateRequest(r QueuedRequest) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("queued request id required")
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("queued request %s: url required", r.ID)
	}
	return nil
}
