package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

const MaxReplyLength = 5000

// Reply is a staff message appended to a ticket's thread. Replies are never
// edited or removed, and a reply may outlive its ticket.
type Reply struct {
	id          string
	ticketID    string
	authorID    string
	authorEmail string
	message     string
	createdAt   time.Time
}

// NewReply creates a reply for the ticket with storage id ticketID.
func NewReply(ticketID, authorID, authorEmail, message string) (*Reply, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if authorID == "" {
		return nil, fmt.Errorf("author ID is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("reply message cannot be empty")
	}
	if len(message) > MaxReplyLength {
		return nil, fmt.Errorf("reply exceeds maximum length of %d characters", MaxReplyLength)
	}
	return &Reply{
		ticketID:    ticketID,
		authorID:    authorID,
		authorEmail: authorEmail,
		message:     message,
		createdAt:   biztime.NowUTC(),
	}, nil
}

// ReconstructReply rebuilds a reply from persistence.
func ReconstructReply(id, ticketID, authorID, authorEmail, message string, createdAt time.Time) (*Reply, error) {
	if id == "" {
		return nil, fmt.Errorf("reply ID cannot be empty")
	}
	return &Reply{
		id:          id,
		ticketID:    ticketID,
		authorID:    authorID,
		authorEmail: authorEmail,
		message:     message,
		createdAt:   createdAt,
	}, nil
}

func (r *Reply) ID() string { return r.id }
func (r *Reply) TicketID() string { return r.ticketID }
func (r *Reply) AuthorID() string { return r.authorID }
func (r *Reply) AuthorEmail() string { return r.authorEmail }
func (r *Reply) Message() string { return r.message }
func (r *Reply) CreatedAt() time.Time { return r.createdAt }

func (r *Reply) SetID(id string) error {
	if r.id != "" {
		return fmt.Errorf("reply ID is already set")
	}
	if id == "" {
		return fmt.Errorf("reply ID cannot be empty")
	}
	r.id = id
	return nil
}
