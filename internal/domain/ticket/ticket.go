// Package ticket models support tickets and the staff replies threaded
// under them.
package ticket

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	vo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

const (
	MinSubjectLength     = 5
	MaxSubjectLength     = 200
	MinDescriptionLength = 10
	MaxDescriptionLength = 5000
)

// Ticket content is owned by the submitting customer; its status is owned
// by staff. The human-readable number is distinct from the storage id.
type Ticket struct {
	id          string
	number      string
	ownerID     string
	ownerEmail  string
	subject     string
	description string
	priority    vo.Priority
	status      vo.TicketStatus
	attachments []shared.Attachment
	createdAt   time.Time
	updatedAt   time.Time
	resolvedAt  *time.Time
}

// ValidateSubject checks the trimmed subject length.
func ValidateSubject(subject string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(subject))
	if n < MinSubjectLength {
		return fmt.Errorf("subject must be at least %d characters", MinSubjectLength)
	}
	if n > MaxSubjectLength {
		return fmt.Errorf("subject exceeds maximum length of %d characters", MaxSubjectLength)
	}
	return nil
}

// ValidateDescription checks the trimmed description length.
func ValidateDescription(description string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(description))
	if n < MinDescriptionLength {
		return fmt.Errorf("description must be at least %d characters", MinDescriptionLength)
	}
	if n > MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters", MaxDescriptionLength)
	}
	return nil
}

// NewTicket creates an open ticket. The number is assigned separately by a
// NumberGenerator.
func NewTicket(
	ownerID, ownerEmail string,
	subject, description string,
	priority vo.Priority,
	attachments []shared.Attachment,
) (*Ticket, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if ownerEmail == "" {
		return nil, fmt.Errorf("owner email is required")
	}
	if err := ValidateSubject(subject); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = vo.DefaultPriority
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}
	for _, a := range attachments {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}

	now := biztime.NowUTC()
	return &Ticket{
		ownerID:     ownerID,
		ownerEmail:  ownerEmail,
		subject:     subject,
		description: description,
		priority:    priority,
		status:      vo.StatusOpen,
		attachments: shared.CopyAttachments(attachments),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructTicket rebuilds a ticket from persistence. The legacy
// "in progress" spelling is normalized.
func ReconstructTicket(
	id, number, ownerID, ownerEmail string,
	subject, description string,
	priority vo.Priority,
	status string,
	attachments []shared.Attachment,
	createdAt, updatedAt time.Time,
	resolvedAt *time.Time,
) (*Ticket, error) {
	if id == "" {
		return nil, fmt.Errorf("ticket ID cannot be empty")
	}
	if number == "" {
		return nil, fmt.Errorf("ticket number is required")
	}
	st, err := vo.NewTicketStatus(status)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = vo.DefaultPriority
	}
	return &Ticket{
		id:          id,
		number:      number,
		ownerID:     ownerID,
		ownerEmail:  ownerEmail,
		subject:     subject,
		description: description,
		priority:    priority,
		status:      st,
		attachments: shared.CopyAttachments(attachments),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		resolvedAt:  resolvedAt,
	}, nil
}

func (t *Ticket) ID() string { return t.id }
func (t *Ticket) Number() string { return t.number }
func (t *Ticket) OwnerID() string { return t.ownerID }
func (t *Ticket) OwnerEmail() string { return t.ownerEmail }
func (t *Ticket) Subject() string { return t.subject }
func (t *Ticket) Description() string { return t.description }
func (t *Ticket) Priority() vo.Priority { return t.priority }
func (t *Ticket) Status() vo.TicketStatus { return t.status }
func (t *Ticket) CreatedAt() time.Time { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time { return t.updatedAt }
func (t *Ticket) ResolvedAt() *time.Time { return t.resolvedAt }

func (t *Ticket) Attachments() []shared.Attachment {
	return shared.CopyAttachments(t.attachments)
}

func (t *Ticket) SetID(id string) error {
	if t.id != "" {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == "" {
		return fmt.Errorf("ticket ID cannot be empty")
	}
	t.id = id
	return nil
}

func (t *Ticket) SetNumber(number string) error {
	if t.number != "" {
		return fmt.Errorf("ticket number is already set")
	}
	if number == "" {
		return fmt.Errorf("ticket number cannot be empty")
	}
	t.number = number
	return nil
}

// ChangeStatus sets any valid status. Every call stamps updatedAt, and
// setting resolved stamps resolvedAt. Moving away from resolved keeps the
// last resolution time.
func (t *Ticket) ChangeStatus(status vo.TicketStatus, at time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid status: %s", status)
	}
	t.status = status
	t.updatedAt = at
	if status.IsResolved() {
		resolved := at
		t.resolvedAt = &resolved
	}
	return nil
}

// IsOwnedBy reports whether principalID created the ticket.
func (t *Ticket) IsOwnedBy(principalID string) bool {
	return t.ownerID == principalID
}

// CanBeViewedBy allows the owner and staff.
func (t *Ticket) CanBeViewedBy(principalID string, isStaff bool) bool {
	return isStaff || t.IsOwnedBy(principalID)
}
