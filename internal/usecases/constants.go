package usecases

import "time"

// Background last-used bookkeeping must finish within this bound.
const TouchTimeout = 5 * time.Second

// Outcome label recorded for allowed decisions; denials use their reason.
const decisionAllowed = "allowed"

// Metric operation labels for moderation changes
const (
	moderationApplied = "apply"
	moderationRemoved = "remove"
)
