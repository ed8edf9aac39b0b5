// Package aggregation merges feedback and tickets into one chronological
// feed and derives the filtered views and dashboard figures built on it.
// Everything here is a pure function of its inputs, except Feed.
package aggregation

import (
	"sort"
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

type InteractionType string

const (
	TypeFeedback InteractionType = "feedback"
	TypeTicket   InteractionType = "ticket"
)

// Interaction is one entry of the merged feed. Date is the record's
// creation time.
type Interaction struct {
	Type     InteractionType `json:"type"`
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	OwnerID  string          `json:"userId"`
	Email    string          `json:"email"`
	Status   string          `json:"status"`
	Category string          `json:"category,omitempty"`
	Rating   int             `json:"rating,omitempty"`
	Comment  string          `json:"comment,omitempty"`
	Number   string          `json:"ticketId,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	Priority string          `json:"priority,omitempty"`
}

func FromFeedback(f *feedback.Feedback) Interaction {
	return Interaction{
		Type:     TypeFeedback,
		ID:       f.ID(),
		Date:     f.CreatedAt(),
		OwnerID:  f.OwnerID(),
		Email:    f.OwnerEmail(),
		Status:   f.Status().String(),
		Category: f.Category(),
		Rating:   f.Rating().Int(),
		Comment:  f.Comment(),
	}
}

func FromTicket(t *ticket.Ticket) Interaction {
	return Interaction{
		Type:     TypeTicket,
		ID:       t.ID(),
		Date:     t.CreatedAt(),
		OwnerID:  t.OwnerID(),
		Email:    t.OwnerEmail(),
		Status:   t.Status().String(),
		Number:   t.Number(),
		Subject:  t.Subject(),
		Priority: t.Priority().String(),
	}
}

// Merge combines both collections, newest first. Entries with equal dates
// keep feedback before tickets, each in input order.
func Merge(fb []*feedback.Feedback, tk []*ticket.Ticket) []Interaction {
	out := make([]Interaction, 0, len(fb)+len(tk))
	for _, f := range fb {
		out = append(out, FromFeedback(f))
	}
	for _, t := range tk {
		out = append(out, FromTicket(t))
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(items []Interaction) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
}

// UniqueSorted returns the distinct non-empty values in ascending order.
func UniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// UniqueEmails lists the distinct owner emails of items.
func UniqueEmails(items []Interaction) []string {
	emails := make([]string, 0, len(items))
	for _, i := range items {
		emails = append(emails, i.Email)
	}
	return UniqueSorted(emails)
}
