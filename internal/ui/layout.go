package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the sidebar is hidden.
	LayoutCompactWidth = 80

	// SidebarWidth is the width of the section list.
	SidebarWidth = 18

	// chromeHeight covers header, command bar and toast line.
	chromeHeight = 3
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the cache.
	DefaultUIInterval = time.Second

	// ToastTTL is how long a notification stays on screen.
	ToastTTL = 4 * time.Second

	// maxToasts bounds the notification stack.
	maxToasts = 3
)
