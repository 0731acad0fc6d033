package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the category column is hidden.
	LayoutCompactWidth = 80

	// LayoutDescriptionWidth is the minimum width to show product descriptions.
	LayoutDescriptionWidth = 130
)

// Log display limits.
const (
	// LogTailLines is the number of lines read from the end of the log file.
	LogTailLines = 500
)

// Timing constants.
const (
	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 2 * time.Second

	// ActionTimeout bounds a native action or navigation post.
	ActionTimeout = 15 * time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second
)

// chromeLines is the number of rows taken by header, chip bar and footer.
const chromeLines = 4
