package ticket

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	vo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
)

const (
	EventTypeStatusChanged = "ticket.status_changed"
	EventTypeReplyAdded    = "ticket.reply_added"
)

type StatusChangedEvent struct {
	events.BaseEvent
	Number     string
	Subject    string
	OwnerEmail string
	OldStatus  vo.TicketStatus
	NewStatus  vo.TicketStatus
}

func NewStatusChangedEvent(t *Ticket, old vo.TicketStatus, at time.Time) StatusChangedEvent {
	return StatusChangedEvent{
		BaseEvent:  events.NewBaseEvent(t.ID(), EventTypeStatusChanged, at),
		Number:     t.Number(),
		Subject:    t.Subject(),
		OwnerEmail: t.OwnerEmail(),
		OldStatus:  old,
		NewStatus:  t.Status(),
	}
}

type ReplyAddedEvent struct {
	events.BaseEvent
	Number      string
	Subject     string
	OwnerEmail  string
	AuthorEmail string
	Message     string
}

func NewReplyAddedEvent(t *Ticket, r *Reply) ReplyAddedEvent {
	return ReplyAddedEvent{
		BaseEvent:   events.NewBaseEvent(t.ID(), EventTypeReplyAdded, r.CreatedAt()),
		Number:      t.Number(),
		Subject:     t.Subject(),
		OwnerEmail:  t.OwnerEmail(),
		AuthorEmail: r.AuthorEmail(),
		Message:     r.Message(),
	}
}
