package usecases

import (
	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

// TicketLiveQueries are the standing ticket and reply subscriptions.
type TicketLiveQueries struct {
	hub     *livequery.Hub
	tickets livequery.Source[*ticket.Ticket]
	replies livequery.Source[*ticket.Reply]
}

func NewTicketLiveQueries(
	hub *livequery.Hub,
	tickets livequery.Source[*ticket.Ticket],
	replies livequery.Source[*ticket.Reply],
) *TicketLiveQueries {
	return &TicketLiveQueries{hub: hub, tickets: tickets, replies: replies}
}

func MineQuery(ownerID string) livequery.Query {
	return livequery.From(livequery.CollectionTickets).Where(livequery.FieldUserID, ownerID)
}

func AllQuery() livequery.Query {
	return livequery.From(livequery.CollectionTickets).Sorted(livequery.FieldCreatedAt, livequery.Descending)
}

func OneQuery(ticketID string) livequery.Query {
	return livequery.From(livequery.CollectionTickets).Where(livequery.FieldID, ticketID)
}

func RepliesQuery(ticketID string) livequery.Query {
	return livequery.From(livequery.CollectionTicketReplies).
		Where(livequery.FieldTicketID, ticketID).
		Sorted(livequery.FieldCreatedAt, livequery.Ascending)
}

// Mine delivers the owner's tickets, newest first.
func (q *TicketLiveQueries) Mine(ownerID string, callback func(livequery.Snapshot[*ticket.Ticket])) livequery.Disposer {
	return livequery.WatchNewestFirst(q.hub, MineQuery(ownerID), q.tickets, callback)
}

func (q *TicketLiveQueries) All(callback func(livequery.Snapshot[*ticket.Ticket])) livequery.Disposer {
	return livequery.Watch(q.hub, AllQuery(), q.tickets, callback)
}

// One delivers a single ticket by storage id. The item list is empty while
// the ticket does not exist.
func (q *TicketLiveQueries) One(ticketID string, callback func(livequery.Snapshot[*ticket.Ticket])) livequery.Disposer {
	return livequery.Watch(q.hub, OneQuery(ticketID), q.tickets, callback)
}

// Replies delivers a ticket's replies, oldest first.
func (q *TicketLiveQueries) Replies(ticketID string, callback func(livequery.Snapshot[*ticket.Reply])) livequery.Disposer {
	return livequery.Watch(q.hub, RepliesQuery(ticketID), q.replies, callback)
}

func (q *TicketLiveQueries) Source() livequery.Source[*ticket.Ticket] {
	return q.tickets
}
