package aggregation

import (
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

// RecentActivityLimit caps the recent activity list of both dashboards.
const RecentActivityLimit = 5

// AdminStats are the figures of the staff dashboard.
type AdminStats struct {
	TotalFeedback     int           `json:"totalFeedback"`
	ReviewedFeedback  int           `json:"reviewedFeedback"`
	OpenTickets       int           `json:"openTickets"`
	InProgressTickets int           `json:"inProgressTickets"`
	ResolvedTickets   int           `json:"resolvedTickets"`
	RecentActivity    []Interaction `json:"recentActivity"`
}

// CustomerStats are the figures of a customer's dashboard. OpenTickets
// counts both open and in-progress tickets.
type CustomerStats struct {
	TotalFeedback   int           `json:"totalFeedback"`
	OpenTickets     int           `json:"openTickets"`
	ResolvedTickets int           `json:"resolvedTickets"`
	RecentActivity  []Interaction `json:"recentActivity"`
}

// ComputeAdminStats summarizes every record. Recent activity only lists
// what still needs attention: submitted feedback and open tickets.
func ComputeAdminStats(fb []*feedback.Feedback, tk []*ticket.Ticket) AdminStats {
	stats := AdminStats{TotalFeedback: len(fb)}

	pendingFeedback := make([]*feedback.Feedback, 0)
	for _, f := range fb {
		if f.Status().IsReviewed() {
			stats.ReviewedFeedback++
		} else {
			pendingFeedback = append(pendingFeedback, f)
		}
	}

	openTickets := make([]*ticket.Ticket, 0)
	for _, t := range tk {
		switch {
		case t.Status().IsOpen():
			stats.OpenTickets++
			openTickets = append(openTickets, t)
		case t.Status().IsInProgress():
			stats.InProgressTickets++
		case t.Status().IsResolved():
			stats.ResolvedTickets++
		}
	}

	stats.RecentActivity = limit(Merge(pendingFeedback, openTickets), RecentActivityLimit)
	return stats
}

func ComputeCustomerStats(fb []*feedback.Feedback, tk []*ticket.Ticket) CustomerStats {
	stats := CustomerStats{TotalFeedback: len(fb)}
	for _, t := range tk {
		if t.Status().IsActive() {
			stats.OpenTickets++
		} else if t.Status().IsResolved() {
			stats.ResolvedTickets++
		}
	}
	stats.RecentActivity = limit(Merge(fb, tk), RecentActivityLimit)
	return stats
}

func limit(items []Interaction, n int) []Interaction {
	if len(items) > n {
		return items[:n]
	}
	return items
}
