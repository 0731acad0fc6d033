package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// Redis is a Store backed by a Redis server. Products and queued requests live in hashes
// keyed by id; companion lists keep insertion order.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// OpenRedis connects to addr and verifies the server answers PING.
func OpenRedis(ctx context.Context, addr string, db int, prefix string) (*Redis, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client. An empty prefix uses "productlist".
func NewRedis(client *redis.Client, prefix string) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "productlist"
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *Redis) GetAllProducts(ctx context.Context) ([]catalog.Product, error) {
	ids, err := s.client.LRange(ctx, s.key("products", "order"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := s.client.HMGet(ctx, s.key("products"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make([]catalog.Product, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p catalog.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", ids[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

const maxTxAttempts = 3

func (s *Redis) SaveProduct(ctx context.Context, p catalog.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	hashKey, orderKey := s.key("products"), s.key("products", "order")
	save := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, hashKey, p.ID).Result()
		if err != nil {
			return err
		}
		// The hash write and the order push commit together or not at all.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, p.ID, data)
			if !exists {
				pipe.RPush(ctx, orderKey, p.ID)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.client.Watch(ctx, save, hashKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return nil
}

func (s *Redis) SetLastSyncTime(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, s.key("last_sync"), t.UnixMilli(), 0).Err(); err != nil {
		return fmt.Errorf("set last sync: %w", err)
	}
	return nil
}

func (s *Redis) LastSyncTime(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.key("last_sync")).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last sync: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last sync %q: %w", raw, err)
	}
	return time.UnixMilli(ms), nil
}

func (s *Redis) GetQueuedRequests(ctx context.Context) ([]QueuedRequest, error) {
	ids, err := s.client.LRange(ctx, s.key("queue"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := s.client.HMGet(ctx, s.key("queue", "items"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	out := make([]QueuedRequest, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var req QueuedRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("decode queued request %s: %w", ids[i], err)
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *Redis) Enqueue(ctx context.Context, req QueuedRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode queued request: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key("queue", "items"), req.ID, data)
		pipe.RPush(ctx, s.key("queue"), req.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", req.ID, err)
	}
	return nil
}

func (s *Redis) RemoveFromQueue(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, s.key("queue"), 0, id)
		pipe.HDel(ctx, s.key("queue", "items"), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s from queue: %w", id, err)
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
