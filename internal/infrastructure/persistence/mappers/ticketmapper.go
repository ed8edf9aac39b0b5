package mappers

import (
	"fmt"

	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	vo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
)

// TicketMapper handles the conversion between ticket entities and
// persistence models.
type TicketMapper interface {
	ToModel(t *ticket.Ticket) *models.TicketModel
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)
	ToDomainList(ms []models.TicketModel) ([]*ticket.Ticket, error)
	ReplyToModel(r *ticket.Reply) *models.TicketReplyModel
	ReplyToDomain(model *models.TicketReplyModel) (*ticket.Reply, error)
	ReplyToDomainList(ms []models.TicketReplyModel) ([]*ticket.Reply, error)
}

type TicketMapperImpl struct{}

func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

func (m *TicketMapperImpl) ToModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:          t.ID(),
		Number:      t.Number(),
		UserID:      t.OwnerID(),
		Email:       t.OwnerEmail(),
		Subject:     t.Subject(),
		Description: t.Description(),
		Priority:    t.Priority().String(),
		Status:      t.Status().String(),
		Attachments: attachmentsToModel(t.Attachments()),
		CreatedAt:   toMillis(t.CreatedAt()),
		UpdatedAt:   toMillis(t.UpdatedAt()),
		ResolvedAt:  toMillisPtr(t.ResolvedAt()),
	}
}

func (m *TicketMapperImpl) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	if model == nil {
		return nil, nil
	}
	t, err := ticket.ReconstructTicket(
		model.ID,
		model.Number,
		model.UserID,
		model.Email,
		model.Subject,
		model.Description,
		vo.Priority(model.Priority),
		model.Status,
		attachmentsToDomain(model.Attachments),
		fromMillis(model.CreatedAt),
		fromMillis(model.UpdatedAt),
		fromMillisPtr(model.ResolvedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ticket %s: %w", model.ID, err)
	}
	return t, nil
}

func (m *TicketMapperImpl) ToDomainList(ms []models.TicketModel) ([]*ticket.Ticket, error) {
	out := make([]*ticket.Ticket, 0, len(ms))
	for i := range ms {
		t, err := m.ToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *TicketMapperImpl) ReplyToModel(r *ticket.Reply) *models.TicketReplyModel {
	return &models.TicketReplyModel{
		ID:         r.ID(),
		TicketID:   r.TicketID(),
		AdminID:    r.AuthorID(),
		AdminEmail: r.AuthorEmail(),
		Message:    r.Message(),
		CreatedAt:  toMillis(r.CreatedAt()),
	}
}

func (m *TicketMapperImpl) ReplyToDomain(model *models.TicketReplyModel) (*ticket.Reply, error) {
	if model == nil {
		return nil, nil
	}
	r, err := ticket.ReconstructReply(
		model.ID,
		model.TicketID,
		model.AdminID,
		model.AdminEmail,
		model.Message,
		fromMillis(model.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct reply %s: %w", model.ID, err)
	}
	return r, nil
}

func (m *TicketMapperImpl) ReplyToDomainList(ms []models.TicketReplyModel) ([]*ticket.Reply, error) {
	out := make([]*ticket.Reply, 0, len(ms))
	for i := range ms {
		r, err := m.ReplyToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
