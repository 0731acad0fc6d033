package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/luxury-retail/productlist/internal/catalog"
)

const lockRetryDelay = 10 * time.Millisecond

// File is a Store persisted as a single JSON document shared by every process that
// opens the same path. Each operation takes an advisory lock on a sibling .lock file
// and reads the document from disk, so entries enqueued by another process are seen
// and never overwritten. Mutations write through a temp file and rename, so a crash
// leaves either the old or the new state on disk.
type File struct {
	path string
	lock *flock.Flock

	// mu serializes goroutines sharing lock, which holds a single file handle.
	mu sync.Mutex
}

var _ Store = (*File)(nil)

type fileDocument struct {
	Products []catalog.Product `json:"products"`
	LastSync time.Time         `json:"lastSync"`
	Queue    []QueuedRequest   `json:"queue"`
}

// OpenFile opens the store at path, creating parent directories as needed.
// A missing file yields an empty store. An unreadable document fails here rather
// than on first use.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	f := &File{path: path, lock: flock.New(path + ".lock")}
	if err := f.view(context.Background(), func(*Memory) error { return nil }); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) GetAllProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := f.view(ctx, func(m *Memory) (err error) {
		out, err = m.GetAllProducts(ctx)
		return err
	})
	return out, err
}

func (f *File) SaveProduct(ctx context.Context, p catalog.Product) error {
	return f.mutate(ctx, func(m *Memory) error { return m.SaveProduct(ctx, p) })
}

func (f *File) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return f.mutate(ctx, func(m *Memory) error { return m.SetLastSyncTime(ctx, t) })
}

func (f *File) LastSyncTime(ctx context.Context) (time.Time, error) {
	var out time.Time
	err := f.view(ctx, func(m *Memory) (err error) {
		out, err = m.LastSyncTime(ctx)
		return err
	})
	return out, err
}

func (f *File) GetQueuedRequests(ctx context.Context) ([]QueuedRequest, error) {
	var out []QueuedRequest
	err := f.view(ctx, func(m *Memory) (err error) {
		out, err = m.GetQueuedRequests(ctx)
		return err
	})
	return out, err
}

func (f *File) Enqueue(ctx context.Context, req QueuedRequest) error {
	return f.mutate(ctx, func(m *Memory) error { return m.Enqueue(ctx, req) })
}

func (f *File) RemoveFromQueue(ctx context.Context, id string) error {
	return f.mutate(ctx, func(m *Memory) error { return m.RemoveFromQueue(ctx, id) })
}

func (f *File) Close() error { return f.lock.Close() }

// view runs read under a shared lock against the document as it is on disk.
func (f *File) view(ctx context.Context, read func(*Memory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock store: %w", ctx.Err())
	}
	defer f.lock.Unlock()

	mem, err := f.load(ctx)
	if err != nil {
		return err
	}
	return read(mem)
}

// mutate re-reads the document under an exclusive lock, applies the change and writes
// it back. A failed apply or write leaves the file untouched.
func (f *File) mutate(ctx context.Context, apply func(*Memory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock store: %w", ctx.Err())
	}
	defer f.lock.Unlock()

	mem, err := f.load(ctx)
	if err != nil {
		return err
	}
	if err := apply(mem); err != nil {
		return err
	}
	return f.flush(ctx, mem)
}

func (f *File) load(ctx context.Context) (*Memory, error) {
	mem := NewMemory()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return mem, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return mem, nil
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", f.path, err)
	}
	for _, p := range doc.Products {
		if err := mem.SaveProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("load product: %w", err)
		}
	}
	mem.lastSync = doc.LastSync
	for _, r := range doc.Queue {
		if err := mem.Enqueue(ctx, r); err != nil {
			return nil, fmt.Errorf("load queue: %w", err)
		}
	}
	return mem, nil
}

// flush writes compact JSON so queued bodies round-trip byte for byte.
func (f *File) flush(ctx context.Context, mem *Memory) error {
	products, _ := mem.GetAllProducts(ctx)
	queue, _ := mem.GetQueuedRequests(ctx)
	lastSync, _ := mem.LastSyncTime(ctx)

	data, err := json.Marshal(fileDocument{
		Products: products,
		LastSync: lastSync,
		Queue:    queue,
	})
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
