// Package state holds the product list view state shared by the controller and the UI.
//
// # Overview
//
// The controller writes: load results, connectivity transitions, search and category
// changes, offline queue depth. The UI reads a Snapshot on every refresh tick and
// renders it. The Store mediates between those goroutines:
//
//	Controller:                    UI:
//	┌─────────────────┐           ┌─────────────────┐
//	│ FinishLoad()    │           │                 │
//	│ SetOnline()     │──────────→│ Snapshot()      │
//	│ SetQueue()      │  (mutex)  │      ↓          │
//	│                 │           │ View(), render  │
//	└─────────────────┘           └─────────────────┘
//
// # Load Outcomes
//
// FinishLoad always clears Loading, whichever way the load ended:
//
//	Loaded          cached products adopted
//	LoadedFallback  cache empty, mock products adopted and cached
//	Recovered       load failed, mock products adopted directly
//
// # Copying
//
// Both FinishLoad and Snapshot clone the product slice, and Snapshot wraps the stored
// error in a fresh value. Callers may mutate what they receive.
//
// # Derived View
//
// ViewState.View applies the category and search filter at read time, so the
// filtered list and the category chips are never stored and never go stale.
//
// NewStore returns the initial state: loading, online, category All. A zero Store is
// usable too, but starts offline and not loading.
package state
