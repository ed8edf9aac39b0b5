package dto

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

type TicketDTO struct {
	ID          string              `json:"id"`
	Number      string              `json:"ticketId"`
	UserID      string              `json:"userId"`
	Email       string              `json:"email"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Priority    string              `json:"priority"`
	Status      string              `json:"status"`
	Attachments []shared.Attachment `json:"attachments"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	ResolvedAt  *time.Time          `json:"resolvedAt"`
}

type ReplyDTO struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	AdminID    string    `json:"adminId"`
	AdminEmail string    `json:"adminEmail"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TicketDetailDTO is a ticket with its replies, oldest reply first.
type TicketDetailDTO struct {
	Ticket  *TicketDTO  `json:"ticket"`
	Replies []*ReplyDTO `json:"replies"`
}

func ToTicketDTO(t *ticket.Ticket) *TicketDTO {
	if t == nil {
		return nil
	}
	return &TicketDTO{
		ID:          t.ID(),
		Number:      t.Number(),
		UserID:      t.OwnerID(),
		Email:       t.OwnerEmail(),
		Subject:     t.Subject(),
		Description: t.Description(),
		Priority:    t.Priority().String(),
		Status:      t.Status().String(),
		Attachments: t.Attachments(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
		ResolvedAt:  t.ResolvedAt(),
	}
}

func ToTicketDTOs(items []*ticket.Ticket) []*TicketDTO {
	out := make([]*TicketDTO, 0, len(items))
	for _, t := range items {
		out = append(out, ToTicketDTO(t))
	}
	return out
}

func ToReplyDTO(r *ticket.Reply) *ReplyDTO {
	if r == nil {
		return nil
	}
	return &ReplyDTO{
		ID:         r.ID(),
		TicketID:   r.TicketID(),
		AdminID:    r.AuthorID(),
		AdminEmail: r.AuthorEmail(),
		Message:    r.Message(),
		CreatedAt:  r.CreatedAt(),
	}
}

func ToReplyDTOs(items []*ticket.Reply) []*ReplyDTO {
	out := make([]*ReplyDTO, 0, len(items))
	for _, r := range items {
		out = append(out, ToReplyDTO(r))
	}
	return out
}
