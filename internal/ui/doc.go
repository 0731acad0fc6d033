// Package ui provides the terminal user interface for the product list.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds the rendered copy of the view state
// and drives a Controller (implemented by *app.Controller) for everything that
// changes it: search, category selection, product selection and the native
// camera and location actions.
//
// # Package Structure
//
//   - app.go: Model, key dispatch, messages and commands, Run
//   - header.go: title bar, offline banner, search and category chips, footer
//   - products.go: product rows, the loading and empty placeholders, cursor movement
//   - logs.go: activity log view over the zerolog file (logtail)
//   - modal.go: the notice dialog shown after camera and location actions
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: Lipgloss themes and background-safe rendering
//
// # Event Flow
//
//  1. Run() builds the Model from a Controller and starts the program
//  2. A tick re-reads state.Store so connectivity, sync time and queue depth follow
//     background changes
//  3. Filter edits call the Controller and re-read the store immediately
//  4. Native actions and navigation run as commands; their result arrives as a
//     message and is shown as a notice or a status line
//  5. Context cancellation cleanly shuts down the UI
//
// # Key Bindings
//
//   - /: Search by name or brand (enter keeps, esc clears)
//   - f/F or right/left: Next/previous category
//   - j/k, g/G: Move selection
//   - enter: Open the selected product in the detail app
//   - c: Take a product photo
//   - L: Show current location
//   - s: Replay the offline queue now
//   - l: Activity log (Space toggles follow, esc returns)
//   - T: Cycle theme (saved with the category in prefs)
//   - h or ?: Help
//   - e or Ctrl+C: Exit
package ui
