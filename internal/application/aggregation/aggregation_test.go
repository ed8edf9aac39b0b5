package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	fbvo "github.com/frankincense-labs/cx-management/internal/domain/feedback/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	ticketvo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/testutil"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func fb(t *testing.T, id, email string, rating int, category string, status fbvo.FeedbackStatus, created time.Time) *feedback.Feedback {
	t.Helper()
	f, err := feedback.ReconstructFeedback(id, "owner-"+email, email, rating, "comment long enough", category, status, nil, created, nil)
	require.NoError(t, err)
	return f
}

func tk(t *testing.T, id, email, status, priority string, created time.Time) *ticket.Ticket {
	t.Helper()
	tt, err := ticket.ReconstructTicket(id, "TKT-"+id, "owner-"+email, email, "Subject line", "Description text", ticketvo.Priority(priority), status, nil, created, created, nil)
	require.NoError(t, err)
	return tt
}

func useUTC(t *testing.T) {
	t.Helper()
	require.NoError(t, biztime.Init("UTC"))
}

func TestMerge_NewestFirst(t *testing.T) {
	feedbacks := []*feedback.Feedback{
		fb(t, "f1", "a@x.com", 5, "ui", fbvo.StatusSubmitted, day.Add(1*time.Hour)),
		fb(t, "f2", "b@x.com", 3, "", fbvo.StatusReviewed, day.Add(3*time.Hour)),
	}
	tickets := []*ticket.Ticket{
		tk(t, "t1", "a@x.com", "open", "high", day.Add(2*time.Hour)),
		tk(t, "t2", "a@x.com", "resolved", "low", day.Add(1*time.Hour)),
	}

	merged := Merge(feedbacks, tickets)
	require.Len(t, merged, 4)

	ids := []string{merged[0].ID, merged[1].ID, merged[2].ID, merged[3].ID}
	// f1 and t2 share a timestamp; feedback comes first.
	assert.Equal(t, []string{"f2", "t1", "f1", "t2"}, ids)
	assert.Equal(t, TypeTicket, merged[1].Type)
	assert.Equal(t, "TKT-t1", merged[1].Number)
	assert.Equal(t, 3, merged[0].Rating)
}

func TestFilter_ApplyIsPureAndIdempotent(t *testing.T) {
	useUTC(t)
	merged := Merge(
		[]*feedback.Feedback{
			fb(t, "f1", "a@x.com", 5, "ui", fbvo.StatusSubmitted, day.Add(time.Hour)),
			fb(t, "f2", "b@x.com", 2, "billing", fbvo.StatusReviewed, day.Add(30*time.Hour)),
		},
		[]*ticket.Ticket{
			tk(t, "t1", "a@x.com", "open", "high", day.Add(2*time.Hour)),
		},
	)
	before := append([]Interaction(nil), merged...)

	f := Filter{Email: "a@x.com"}
	first := f.Apply(merged)
	second := f.Apply(merged)
	assert.Equal(t, first, second)
	assert.Equal(t, before, merged)
	assert.Len(t, first, 2)

	assert.Len(t, Filter{Type: TypeFeedback}.Apply(merged), 2)
	assert.Len(t, Filter{Type: TypeTicket}.Apply(merged), 1)
	assert.Len(t, Filter{Rating: 2}.Apply(merged), 1)
	assert.Len(t, Filter{Category: "ui"}.Apply(merged), 1)
	assert.Len(t, Filter{Status: "open"}.Apply(merged), 1)
	assert.Len(t, Filter{}.Apply(merged), 3)
}

func TestDateRange_InclusiveCalendarDays(t *testing.T) {
	useUTC(t)
	r, err := ParseDateRange("2024-03-01", "2024-03-02")
	require.NoError(t, err)

	tests := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), false},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 3, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC), true},
		{time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Contains(tt.at), tt.at.String())
	}

	open, err := ParseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, open.Contains(time.Time{}))

	_, err = ParseDateRange("03/01/2024", "")
	assert.Error(t, err)
}

func TestComputeAdminStats(t *testing.T) {
	var feedbacks []*feedback.Feedback
	for i := 0; i < 4; i++ {
		feedbacks = append(feedbacks, fb(t, "s"+string(rune('a'+i)), "a@x.com", 4, "", fbvo.StatusSubmitted, day.Add(time.Duration(i)*time.Hour)))
	}
	feedbacks = append(feedbacks, fb(t, "r1", "a@x.com", 4, "", fbvo.StatusReviewed, day.Add(100*time.Hour)))

	tickets := []*ticket.Ticket{
		tk(t, "o1", "a@x.com", "open", "medium", day.Add(10*time.Hour)),
		tk(t, "o2", "a@x.com", "open", "medium", day.Add(11*time.Hour)),
		tk(t, "p1", "a@x.com", "in-progress", "medium", day.Add(12*time.Hour)),
		tk(t, "p2", "a@x.com", "in progress", "medium", day.Add(13*time.Hour)),
		tk(t, "d1", "a@x.com", "resolved", "medium", day.Add(200*time.Hour)),
	}

	stats := ComputeAdminStats(feedbacks, tickets)
	assert.Equal(t, 5, stats.TotalFeedback)
	assert.Equal(t, 1, stats.ReviewedFeedback)
	assert.Equal(t, 2, stats.OpenTickets)
	assert.Equal(t, 2, stats.InProgressTickets)
	assert.Equal(t, 1, stats.ResolvedTickets)

	require.Len(t, stats.RecentActivity, RecentActivityLimit)
	assert.Equal(t, "o2", stats.RecentActivity[0].ID)
	assert.Equal(t, "o1", stats.RecentActivity[1].ID)
	for _, i := range stats.RecentActivity {
		assert.NotEqual(t, "r1", i.ID)
		assert.NotEqual(t, "d1", i.ID)
	}
}

func TestComputeCustomerStats(t *testing.T) {
	feedbacks := []*feedback.Feedback{fb(t, "f1", "c@x.com", 5, "", fbvo.StatusReviewed, day)}
	tickets := []*ticket.Ticket{
		tk(t, "t1", "c@x.com", "open", "low", day.Add(time.Hour)),
		tk(t, "t2", "c@x.com", "in progress", "low", day.Add(2*time.Hour)),
		tk(t, "t3", "c@x.com", "resolved", "low", day.Add(3*time.Hour)),
	}

	stats := ComputeCustomerStats(feedbacks, tickets)
	assert.Equal(t, 1, stats.TotalFeedback)
	assert.Equal(t, 2, stats.OpenTickets)
	assert.Equal(t, 1, stats.ResolvedTickets)
	require.Len(t, stats.RecentActivity, 4)
	assert.Equal(t, "t3", stats.RecentActivity[0].ID)
}

func TestTicketBoardFilter(t *testing.T) {
	useUTC(t)
	tickets := []*ticket.Ticket{
		tk(t, "t1", "a@x.com", "open", "high", day),
		tk(t, "t2", "b@x.com", "in progress", "low", day.Add(24*time.Hour)),
		tk(t, "t3", "b@x.com", "resolved", "high", day.Add(48*time.Hour)),
	}

	assert.Len(t, TicketBoardFilter{Status: ticketvo.StatusInProgress}.Apply(tickets), 1)
	assert.Len(t, TicketBoardFilter{Email: "b@x.com"}.Apply(tickets), 2)
	assert.Len(t, TicketBoardFilter{Priority: "high"}.Apply(tickets), 2)

	r, err := ParseDateRange("2024-03-02", "")
	require.NoError(t, err)
	assert.Len(t, TicketBoardFilter{Range: r}.Apply(tickets), 2)

	assert.Equal(t, TicketCounts{Open: 1, InProgress: 1, Resolved: 1}, CountTickets(tickets))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, TicketCustomers(tickets))
}

func TestFeedbackReviewFilter(t *testing.T) {
	items := []*feedback.Feedback{
		fb(t, "f1", "b@x.com", 5, "ui", fbvo.StatusSubmitted, day),
		fb(t, "f2", "a@x.com", 1, "billing", fbvo.StatusReviewed, day),
		fb(t, "f3", "a@x.com", 5, "", fbvo.StatusSubmitted, day),
	}

	assert.Len(t, FeedbackReviewFilter{Rating: 5}.Apply(items), 2)
	assert.Len(t, FeedbackReviewFilter{Status: "reviewed"}.Apply(items), 1)
	assert.Len(t, FeedbackReviewFilter{Email: "a@x.com", Rating: 5}.Apply(items), 1)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, FeedbackCustomers(items))
	assert.Equal(t, []string{"billing", "ui"}, FeedbackCategories(items))
}

type sliceSource[T any] struct {
	items []T
	err   error
}

func (s *sliceSource[T]) Fetch(context.Context, livequery.Query) ([]T, error) {
	return s.items, s.err
}

func TestFeed_MergesBothSubscriptions(t *testing.T) {
	hub := livequery.NewHub(testutil.NewMockLogger())
	defer hub.Close()

	views := make(chan FeedView, 16)
	feed := NewFeed(hub, FeedSources{
		FeedbackQuery: livequery.From(livequery.CollectionFeedback),
		Feedback:      &sliceSource[*feedback.Feedback]{items: []*feedback.Feedback{fb(t, "f1", "a@x.com", 4, "", fbvo.StatusSubmitted, day)}},
		TicketsQuery:  livequery.From(livequery.CollectionTickets),
		Tickets:       &sliceSource[*ticket.Ticket]{items: []*ticket.Ticket{tk(t, "t1", "b@x.com", "open", "low", day.Add(time.Hour))}},
	}, Filter{Type: TypeTicket}, func(v FeedView) { views <- v })
	defer feed.Close()

	require.Eventually(t, func() bool { return len(feed.View().All) == 2 }, 2*time.Second, 5*time.Millisecond)

	v := feed.View()
	assert.Equal(t, "t1", v.All[0].ID)
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, TypeTicket, v.Filtered[0].Type)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, v.Customers)

	feed.SetFilter(Filter{})
	assert.Len(t, feed.View().Filtered, 2)

	feed.Close()
	feed.Close()
	assert.Eventually(t, func() bool { return hub.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFeed_ReportsSubscriptionFailure(t *testing.T) {
	hub := livequery.NewHub(testutil.NewMockLogger())
	defer hub.Close()

	boom := errors.New("backend unavailable")
	feed := NewFeed(hub, FeedSources{
		FeedbackQuery: livequery.From(livequery.CollectionFeedback),
		Feedback:      &sliceSource[*feedback.Feedback]{err: boom},
		TicketsQuery:  livequery.From(livequery.CollectionTickets),
		Tickets:       &sliceSource[*ticket.Ticket]{},
	}, Filter{}, nil)
	defer feed.Close()

	require.Eventually(t, func() bool { return feed.View().Err != nil }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, feed.View().Err, boom)
}
