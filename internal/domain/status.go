package domain

import "strings"

// LotStatus is the canonical lifecycle state of a cattle lot. Display
// labels are derived; nothing stores a free-text mirror of the status.
type LotStatus string

const (
	StatusConfirmed LotStatus = "CONFIRMED"
	StatusReceived  LotStatus = "RECEIVED"
	StatusConfined  LotStatus = "CONFINED"
	StatusSold      LotStatus = "SOLD"
	StatusCancelled LotStatus = "CANCELLED"
)

var lotStatusLabels = map[LotStatus]string{
	StatusConfirmed: "Purchase confirmed",
	StatusReceived:  "Received",
	StatusConfined:  "Confined",
	StatusSold:      "Sold",
	StatusCancelled: "Cancelled",
}

// Transitions are monotonic: a lot never regresses, and only cancellation
// escapes the forward path.
var lotStatusNext = map[LotStatus][]LotStatus{
	StatusConfirmed: {StatusReceived, StatusCancelled},
	StatusReceived:  {StatusConfined, StatusCancelled},
	StatusConfined:  {StatusSold, StatusCancelled},
}

// StatusLabel returns the human-readable label for a lot status.
func StatusLabel(s LotStatus) string {
	if label, ok := lotStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseLotStatus returns the status for a label or raw value (case-insensitive).
func ParseLotStatus(value string) (LotStatus, bool) {
	s := LotStatus(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := lotStatusLabels[s]
	return s, ok
}

// Terminal reports whether no further transition is allowed.
func (s LotStatus) Terminal() bool {
	return s == StatusSold || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle step.
func (s LotStatus) CanTransitionTo(next LotStatus) bool {
	for _, allowed := range lotStatusNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
