package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxury-retail/productlist/internal/bridge"
	"github.com/luxury-retail/productlist/internal/catalog"
	"github.com/luxury-retail/productlist/internal/netstatus"
	"github.com/luxury-retail/productlist/internal/offline"
	"github.com/luxury-retail/productlist/internal/state"
	"github.com/luxury-retail/productlist/internal/storage"
)

// Selector forwards a selected product to the next app. Implemented by *nav.Navigator.
type Selector interface {
	ProductSelected(ctx context.Context, p catalog.Product) error
}

// Drainer replays the offline queue. Implemented by *offline.Drainer.
type Drainer interface {
	Drain(ctx context.Context) (offline.Result, error)
}

// Recorder receives controller measurements. Implemented by *metrics.Metrics.
type Recorder interface {
	ObserveLoad(outcome string)
	ObserveAction(action string, err error)
	SetOnline(online bool)
	SetQueueDepth(n int)
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Store    storage.Store
	Features bridge.Features
	Network  netstatus.Source
	Selector Selector
	Drainer  Drainer
	Recorder Recorder
	Logger   zerolog.Logger
	// Mock supplies the built-in dataset; defaults to catalog.MockProducts.
	Mock func() []catalog.Product
	Now  func() time.Time
}

// LoadResult describes one LoadProducts run.
type LoadResult struct {
	Outcome state.LoadOutcome
	// Saved and SaveErrors count cache writes on the fallback path.
	Saved      int
	SaveErrors int
	Err        error
}

// Controller owns the product list view state and the offline sync lifecycle.
type Controller struct {
	deps  Deps
	state *state.Store
	log   zerolog.Logger

	mu     sync.Mutex
	sub    *netstatus.Subscription
	closed bool
	drains sync.WaitGroup
}

// NewController builds a Controller. Store, Features and Network are required.
func NewController(deps Deps) (*Controller, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("controller: store required")
	}
	if deps.Features == nil {
		return nil, fmt.Errorf("controller: native features required")
	}
	if deps.Network == nil {
		return nil, fmt.Errorf("controller: network source required")
	}
	if deps.Mock == nil {
		deps.Mock = catalog.MockProducts
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	return &Controller{
		deps:  deps,
		state: state.NewStore(),
		log:   deps.Logger,
	}, nil
}

// State exposes the view state store for rendering.
func (c *Controller) State() *state.Store {
	return c.state
}

// Platform reports the native platform name.
func (c *Controller) Platform() string {
	return c.deps.Features.Platform()
}

// Start checks permissions, loads products and begins following connectivity.
// Reconnects trigger a drain of the offline queue until Close is called.
func (c *Controller) Start(ctx context.Context) error {
	perms, err := c.deps.Features.CheckAllPermissions(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("permission check failed")
	} else {
		c.log.Info().
			Str("camera", string(perms.Camera)).
			Str("location", string(perms.Location)).
			Str("notifications", string(perms.Notifications)).
			Msg("permissions status")
	}

	c.LoadProducts(ctx)

	status, err := c.deps.Network.Status(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("network status unavailable")
	} else {
		c.state.SetOnline(status.Connected)
		c.deps.Recorder.SetOnline(status.Connected)
	}

	sub := c.deps.Network.Subscribe(func(s netstatus.Status) {
		c.onNetworkChange(ctx, s)
	})
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Close()
		return fmt.Errorf("controller closed")
	}
	c.sub = sub
	c.mu.Unlock()

	c.RefreshQueue(ctx)
	return nil
}

// LoadProducts runs the cache-first load. The view state always leaves loading with a
// product set, falling back to the built-in dataset when the cache cannot serve one.
func (c *Controller) LoadProducts(ctx context.Context) LoadResult {
	c.state.BeginLoad()

	products, res := c.load(ctx)
	var synced time.Time
	if res.Err == nil {
		synced = c.deps.Now()
		if err := c.deps.Store.SetLastSyncTime(ctx, synced); err != nil {
			res.Err = fmt.Errorf("record last sync: %w", err)
		}
	}
	if res.Err != nil {
		c.log.Error().Err(res.Err).Msg("failed to load products")
		products = c.deps.Mock()
		res.Outcome = state.Recovered
		synced = time.Time{}
	}

	c.state.FinishLoad(products, res.Outcome, synced, res.Err)
	c.deps.Recorder.ObserveLoad(string(res.Outcome))
	c.log.Info().
		Str("outcome", string(res.Outcome)).
		Int("products", len(products)).
		Int("saved", res.Saved).
		Int("save_errors", res.SaveErrors).
		Msg("products loaded")
	return res
}

func (c *Controller) load(ctx context.Context) ([]catalog.Product, LoadResult) {
	cached, err := c.deps.Store.GetAllProducts(ctx)
	if err != nil {
		return nil, LoadResult{Err: fmt.Errorf("read cached products: %w", err)}
	}
	if len(cached) > 0 {
		return cached, LoadResult{Outcome: state.Loaded}
	}

	mock := c.deps.Mock()
	res := LoadResult{Outcome: state.LoadedFallback}
	for _, p := range mock {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return nil, res
		}
		if err := c.deps.Store.SaveProduct(ctx, p); err != nil {
			res.SaveErrors++
			c.log.Warn().Err(err).Str("product", p.ID).Msg("failed to cache product")
			continue
		}
		res.Saved++
	}
	return mock, res
}

// SetSearch updates the search query.
func (c *Controller) SetSearch(query string) {
	c.state.SetSearch(query)
}

// SetCategory updates the selected category.
func (c *Controller) SetCategory(category string) {
	c.state.SetCategory(category)
}

// RestoreCategory reapplies a remembered category. A category the loaded products no
// longer carry falls back to All. It returns the category in effect.
func (c *Controller) RestoreCategory(category string) string {
	c.state.SetCategory(category)
	snap := c.state.Snapshot()
	for _, known := range snap.View().Categories {
		if known == snap.SelectedCategory {
			return known
		}
	}
	c.log.Info().Str("category", category).Msg("remembered category not in catalog")
	c.state.SetCategory(catalog.AllCategories)
	return catalog.AllCategories
}

// View returns the filtered products and category chips for the current state.
func (c *Controller) View() catalog.View {
	return c.state.Snapshot().View()
}

// SelectProduct hands p to the detail app.
func (c *Controller) SelectProduct(ctx context.Context, p catalog.Product) error {
	if c.deps.Selector == nil {
		return fmt.Errorf("no navigation configured")
	}
	return c.deps.Selector.ProductSelected(ctx, p)
}

// Drain replays the offline queue once and records the resulting depth.
func (c *Controller) Drain(ctx context.Context) (offline.Result, error) {
	if c.deps.Drainer == nil {
		return offline.Result{}, nil
	}
	res, err := c.deps.Drainer.Drain(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("offline sync failed")
		return res, err
	}
	c.state.SetQueue(res.Remaining, c.deps.Now())
	c.deps.Recorder.SetQueueDepth(res.Remaining)
	return res, nil
}

// RefreshQueue re-reads the offline queue depth.
func (c *Controller) RefreshQueue(ctx context.Context) error {
	queued, err := c.deps.Store.GetQueuedRequests(ctx)
	if err != nil {
		return fmt.Errorf("read offline queue: %w", err)
	}
	c.state.SetQueue(len(queued), time.Time{})
	c.deps.Recorder.SetQueueDepth(len(queued))
	return nil
}

func (c *Controller) onNetworkChange(ctx context.Context, s netstatus.Status) {
	c.state.SetOnline(s.Connected)
	c.deps.Recorder.SetOnline(s.Connected)
	c.log.Info().Bool("connected", s.Connected).Msg("network status changed")
	if !s.Connected {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.drains.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.drains.Done()
		_, _ = c.Drain(ctx)
	}()
}

// Close stops following connectivity and waits for reconnect drains to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	sub.Close()
	c.drains.Wait()
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(string)          {}
func (nopRecorder) ObserveAction(string, error) {}
func (nopRecorder) SetOnline(bool)              {}
func (nopRecorder) SetQueueDepth(int)           {}
