package aggregation

import (
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	ticketvo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
)

// TicketBoardFilter narrows the staff ticket board. Status is one of the
// ticket statuses or empty for all.
type TicketBoardFilter struct {
	Status   ticketvo.TicketStatus
	Email    string
	Priority string
	Range    DateRange
}

func (f TicketBoardFilter) Apply(tickets []*ticket.Ticket) []*ticket.Ticket {
	out := make([]*ticket.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Status != "" && !sameStatus(t.Status(), f.Status) {
			continue
		}
		if f.Email != "" && t.OwnerEmail() != f.Email {
			continue
		}
		if f.Priority != "" && t.Priority().String() != f.Priority {
			continue
		}
		if !f.Range.Contains(t.CreatedAt()) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sameStatus(actual, want ticketvo.TicketStatus) bool {
	if want.IsInProgress() {
		return actual.IsInProgress()
	}
	return actual == want
}

// TicketCounts are the per-status tab badges of the ticket board.
type TicketCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

func CountTickets(tickets []*ticket.Ticket) TicketCounts {
	var c TicketCounts
	for _, t := range tickets {
		switch {
		case t.Status().IsOpen():
			c.Open++
		case t.Status().IsInProgress():
			c.InProgress++
		case t.Status().IsResolved():
			c.Resolved++
		}
	}
	return c
}

// TicketCustomers lists the distinct owner emails of tickets.
func TicketCustomers(tickets []*ticket.Ticket) []string {
	emails := make([]string, 0, len(tickets))
	for _, t := range tickets {
		emails = append(emails, t.OwnerEmail())
	}
	return UniqueSorted(emails)
}

// FeedbackReviewFilter narrows the staff feedback review list.
type FeedbackReviewFilter struct {
	Rating   int
	Status   string
	Email    string
	Category string
	Range    DateRange
}

func (f FeedbackReviewFilter) Apply(items []*feedback.Feedback) []*feedback.Feedback {
	out := make([]*feedback.Feedback, 0, len(items))
	for _, fb := range items {
		if f.Rating != 0 && fb.Rating().Int() != f.Rating {
			continue
		}
		if f.Status != "" && fb.Status().String() != f.Status {
			continue
		}
		if f.Email != "" && fb.OwnerEmail() != f.Email {
			continue
		}
		if f.Category != "" && fb.Category() != f.Category {
			continue
		}
		if !f.Range.Contains(fb.CreatedAt()) {
			continue
		}
		out = append(out, fb)
	}
	return out
}

func FeedbackCustomers(items []*feedback.Feedback) []string {
	emails := make([]string, 0, len(items))
	for _, f := range items {
		emails = append(emails, f.OwnerEmail())
	}
	return UniqueSorted(emails)
}

func FeedbackCategories(items []*feedback.Feedback) []string {
	categories := make([]string, 0, len(items))
	for _, f := range items {
		categories = append(categories, f.Category())
	}
	return UniqueSorted(categories)
}
