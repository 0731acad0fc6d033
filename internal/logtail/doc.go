// Package logtail reads the tail of the app log for the activity view.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so the last N lines of a large file are
// extracted in one pass with O(maxLines) memory:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// Read returns nil, nil for files that do not exist yet.
//
// # Structured Lines
//
// The app logs zerolog JSON. Parse turns a line into an Entry and Format renders it
// for the terminal:
//
//	{"level":"info","product":"lx-001","time":"2026-03-01T12:00:00Z","message":"product selected"}
//	12:00:00 INFO  product selected product=lx-001
//
// Non-JSON lines pass through unchanged.
package logtail
