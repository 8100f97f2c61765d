package domain

import "time"

// Timings holds every delay used by the detection engine (value object)
type Timings struct {
	InputDebounce  time.Duration // Wait after the last keystroke before classifying
	CopyCooldown   time.Duration // Minimum gap between copy evaluations
	SoftClose      time.Duration // Autoclose, paused while hovered
	HardClose      time.Duration // Maximum visible lifetime
	AcceptGrace    time.Duration // Close after accept when nothing else happens
	MaskClose      time.Duration // Close after masking a value
	OmitTTL        time.Duration // Lifetime of an omit
	FormCooldown   time.Duration // Per-container gap between aggregate notifications
	ScanDebounce   time.Duration // Wait after the last DOM change before scanning
	LogoutPending  time.Duration // Lifetime of a pending logout banner marker
	MinInputLength int           // Shorter typed text is never classified
	MinCopyLength  int           // Shorter copied text is never classified
}

// DefaultTimings returns the production timings
func DefaultTimings() Timings {
	return Timings{
		InputDebounce:  250 * time.Millisecond,
		CopyCooldown:   2 * time.Second,
		SoftClose:      6 * time.Second,
		HardClose:      15 * time.Second,
		AcceptGrace:    5 * time.Second,
		MaskClose:      2 * time.Second,
		OmitTTL:        30 * time.Second,
		FormCooldown:   60 * time.Second,
		ScanDebounce:   500 * time.Millisecond,
		LogoutPending:  30 * time.Second,
		MinInputLength: 10,
		MinCopyLength:  5,
	}
}
