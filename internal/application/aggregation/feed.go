package aggregation

import (
	"sync"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

// FeedView is one delivery of a Feed. Err is set when either underlying
// subscription failed; the other one keeps delivering.
type FeedView struct {
	All       []Interaction `json:"all"`
	Filtered  []Interaction `json:"filtered"`
	Customers []string      `json:"customers"`
	Err       error         `json:"-"`
}

// FeedSources names the two live collections a Feed combines.
type FeedSources struct {
	FeedbackQuery livequery.Query
	Feedback      livequery.Source[*feedback.Feedback]
	TicketsQuery  livequery.Query
	Tickets       livequery.Source[*ticket.Ticket]
}

// Feed keeps a merged, filtered interaction feed current. Every delivery
// from either subscription re-merges everything held so far; the two
// collections are not updated atomically with respect to each other.
// onUpdate is called serially and must not call back into the Feed.
type Feed struct {
	mu       sync.Mutex
	feedback []*feedback.Feedback
	tickets  []*ticket.Ticket
	filter   Filter
	err      error
	onUpdate func(FeedView)

	disposers []livequery.Disposer
	closeOnce sync.Once
}

func NewFeed(hub *livequery.Hub, src FeedSources, filter Filter, onUpdate func(FeedView)) *Feed {
	f := &Feed{filter: filter, onUpdate: onUpdate}

	disposers := []livequery.Disposer{
		livequery.WatchNewestFirst(hub, src.FeedbackQuery, src.Feedback, func(s livequery.Snapshot[*feedback.Feedback]) {
			f.mu.Lock()
			defer f.mu.Unlock()
			if s.Err != nil {
				f.err = s.Err
			} else {
				f.feedback = s.Items
			}
			f.emitLocked()
		}),
		livequery.WatchNewestFirst(hub, src.TicketsQuery, src.Tickets, func(s livequery.Snapshot[*ticket.Ticket]) {
			f.mu.Lock()
			defer f.mu.Unlock()
			if s.Err != nil {
				f.err = s.Err
			} else {
				f.tickets = s.Items
			}
			f.emitLocked()
		}),
	}

	f.mu.Lock()
	f.disposers = disposers
	f.mu.Unlock()
	return f
}

// SetFilter replaces the filter and re-emits the current view.
func (f *Feed) SetFilter(filter Filter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.emitLocked()
}

// View returns the current view without waiting for a delivery.
func (f *Feed) View() FeedView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Close disposes both subscriptions. It is idempotent.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		disposers := f.disposers
		f.disposers = nil
		f.mu.Unlock()
		for _, d := range disposers {
			d()
		}
	})
}

func (f *Feed) emitLocked() {
	if f.onUpdate != nil {
		f.onUpdate(f.viewLocked())
	}
}

func (f *Feed) viewLocked() FeedView {
	all := Merge(f.feedback, f.tickets)
	return FeedView{
		All:       all,
		Filtered:  f.filter.Apply(all),
		Customers: UniqueEmails(all),
		Err:       f.err,
	}
}
