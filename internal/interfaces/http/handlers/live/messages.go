package live

import (
	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	identitydto "github.com/frankincense-labs/cx-management/internal/application/identity/dto"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
)

// Client operations.
const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
)

// Server message types.
const (
	MsgTypeSnapshot = "snapshot"
	MsgTypeSession  = "session"
	MsgTypeError    = "error"
)

// View names a live collection a client can subscribe to.
type View string

const (
	ViewFeedbackMine View = "feedback.mine"
	ViewFeedbackAll  View = "feedback.all"
	ViewTicketsMine  View = "tickets.mine"
	ViewTicketsAll   View = "tickets.all"
	ViewTicket       View = "ticket"
	ViewReplies      View = "replies"
	ViewInteractions View = "interactions"
)

// ClientMessage is sent by the browser. ID is chosen by the client and
// echoed on every snapshot of the subscription.
type ClientMessage struct {
	Op     string                          `json:"op"`
	ID     string                          `json:"id"`
	View   View                            `json:"view,omitempty"`
	Ticket string                          `json:"ticketId,omitempty"`
	Filter handlers.InteractionFilterQuery `json:"filter"`
}

// ServerMessage is pushed to the browser. A snapshot with Error set is the
// last one of its subscription.
type ServerMessage struct {
	Type    string                  `json:"type"`
	ID      string                  `json:"id,omitempty"`
	Version uint64                  `json:"version,omitempty"`
	Items   any                     `json:"items,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Session *identitydto.SessionDTO `json:"session,omitempty"`
}

// InteractionsPayload is the item body of an interactions snapshot.
type InteractionsPayload struct {
	Items     []aggregation.Interaction `json:"items"`
	Total     int                       `json:"total"`
	Customers []string                  `json:"customers"`
}
