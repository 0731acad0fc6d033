package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// LoadOutcome records how the last product load ended.
type LoadOutcome string

const (
	// NotLoaded means no load has completed yet.
	NotLoaded LoadOutcome = ""
	// Loaded means cached products were adopted.
	Loaded LoadOutcome = "loaded"
	// LoadedFallback means the cache was empty; mock products were adopted and cached.
	LoadedFallback LoadOutcome = "fallback"
	// Recovered means the load failed and mock products were adopted without caching.
	Recovered LoadOutcome = "recovered"
)

// ViewState is the data the product list renders.
type ViewState struct {
	Products         []catalog.Product
	Loading          bool
	IsOnline         bool
	SelectedCategory string
	SearchQuery      string
	LastSync         time.Time
	LastLoad         LoadOutcome
	LastError        error
	// QueueDepth is the number of requests waiting for connectivity.
	QueueDepth int
	LastDrain  time.Time
}

// View derives the filtered products and category chips.
func (v ViewState) View() catalog.View {
	return catalog.Derive(v.Products, v.SelectedCategory, v.SearchQuery)
}

// IsOffline reports whether the offline banner should show.
func (v ViewState) IsOffline() bool {
	return !v.IsOnline
}

// Store coordinates concurrent updates to the view state.
type Store struct {
	mu    sync.RWMutex
	state ViewState
}

// NewStore returns a store in the initial state: loading, online, All selected.
func NewStore() *Store {
	return &Store{state: ViewState{
		Loading:          true,
		IsOnline:         true,
		SelectedCategory: catalog.AllCategories,
	}}
}

// BeginLoad marks a product load as in progress.
func (s *Store) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
}

// FinishLoad adopts products and clears the loading flag. A zero lastSync keeps the
// previous value. err is recorded for visibility and replaced on the next load.
func (s *Store) FinishLoad(products []catalog.Product, outcome LoadOutcome, lastSync time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Products = catalog.Clone(products)
	s.state.Loading = false
	s.state.LastLoad = outcome
	if !lastSync.IsZero() {
		s.state.LastSync = lastSync
	}
	s.state.LastError = err
}

// SetOnline records connectivity and reports whether it changed.
func (s *Store) SetOnline(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.state.IsOnline != online
	s.state.IsOnline = online
	return changed
}

// SetSearch replaces the search query.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchQuery = query
}

// SetCategory replaces the selected category. Empty selects All.
func (s *Store) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(category) == "" {
		category = catalog.AllCategories
	}
	s.state.SelectedCategory = category
}

// SetQueue records the offline queue depth after a drain or enqueue.
func (s *Store) SetQueue(depth int, drained time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.QueueDepth = depth
	if !drained.IsZero() {
		s.state.LastDrain = drained
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Products = catalog.Clone(s.state.Products)
	if snap.SelectedCategory == "" {
		snap.SelectedCategory = catalog.AllCategories
	}
	if s.state.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.state.LastError)
	}
	return snap
}

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWarning
	NoticeError
)

// Notice is a blocking message shown to the user after an action.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
	Err     error
}
