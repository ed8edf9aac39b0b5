package valueobjects

import (
	"fmt"
	"strings"
)

// TicketStatus is set by staff. Any status may follow any other.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in-progress"
	StatusResolved   TicketStatus = "resolved"

	// legacyInProgress appears in records written by older clients.
	legacyInProgress = "in progress"
)

var validTicketStatuses = map[TicketStatus]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusResolved:   true,
}

func (s TicketStatus) String() string {
	return string(s)
}

func (s TicketStatus) IsValid() bool {
	return validTicketStatuses[s]
}

func (s TicketStatus) IsOpen() bool {
	return s == StatusOpen
}

// IsInProgress also accepts the legacy spelling with a space.
func (s TicketStatus) IsInProgress() bool {
	return s == StatusInProgress || string(s) == legacyInProgress
}

func (s TicketStatus) IsResolved() bool {
	return s == StatusResolved
}

// IsActive reports open or in-progress.
func (s TicketStatus) IsActive() bool {
	return s.IsOpen() || s.IsInProgress()
}

// NewTicketStatus parses a status, normalizing the legacy in-progress spelling.
func NewTicketStatus(s string) (TicketStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == legacyInProgress {
		return StatusInProgress, nil
	}
	status := TicketStatus(normalized)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return status, nil
}

// AllStatuses lists the statuses in display order.
func AllStatuses() []TicketStatus {
	return []TicketStatus{StatusOpen, StatusInProgress, StatusResolved}
}
