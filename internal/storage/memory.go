package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// Memory is an in-process Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu       sync.RWMutex
	order    []string
	products map[string]catalog.Product
	lastSync time.Time
	queue    []QueuedRequest
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{products: make(map[string]catalog.Product)}
}

func (m *Memory) GetAllProducts(context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

func (m *Memory) SaveProduct(_ context.Context, p catalog.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *Memory) SetLastSyncTime(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSync = t
	return nil
}

func (m *Memory) LastSyncTime(context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync, nil
}

func (m *Memory) GetQueuedRequests(context.Context) ([]QueuedRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]QueuedRequest, len(m.queue))
	for i, r := range m.queue {
		out[i] = cloneRequest(r)
	}
	return out, nil
}

func (m *Memory) Enqueue(_ context.Context, req QueuedRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, cloneRequest(req))
	return nil
}

func (m *Memory) RemoveFromQueue(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.queue {
		if r.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
