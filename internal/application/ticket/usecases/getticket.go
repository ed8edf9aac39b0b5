package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// GetTicketQuery looks a ticket up by reference, which is either its human
// number or its storage id.
type GetTicketQuery struct {
	Reference string
	ActorID   string
	ActorRole uservo.Role
}

type GetTicketUseCase struct {
	ticketRepo ticket.Repository
	replyRepo  ticket.ReplyRepository
	logger     logger.Interface
}

func NewGetTicketUseCase(
	ticketRepo ticket.Repository,
	replyRepo ticket.ReplyRepository,
	logger logger.Interface,
) *GetTicketUseCase {
	return &GetTicketUseCase{
		ticketRepo: ticketRepo,
		replyRepo:  replyRepo,
		logger:     logger,
	}
}

func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDetailDTO, error) {
	t, err := uc.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	replies, err := uc.replyRepo.ListByTicket(ctx, t.ID())
	if err != nil {
		uc.logger.Errorw("failed to load replies", "ticket_id", t.ID(), "error", err)
		return nil, err
	}

	return &dto.TicketDetailDTO{
		Ticket:  dto.ToTicketDTO(t),
		Replies: dto.ToReplyDTOs(replies),
	}, nil
}

// Resolve finds the ticket and checks that the actor may view it.
func (uc *GetTicketUseCase) Resolve(ctx context.Context, query GetTicketQuery) (*ticket.Ticket, error) {
	if query.Reference == "" {
		return nil, errors.NewValidationError("ticket reference is required")
	}

	t, err := uc.ticketRepo.GetByNumber(ctx, query.Reference)
	if errors.IsNotFoundError(err) {
		t, err = uc.ticketRepo.GetByID(ctx, query.Reference)
	}
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewNotFoundError("ticket not found", query.Reference)
		}
		uc.logger.Errorw("failed to load ticket", "reference", query.Reference, "error", err)
		return nil, err
	}

	if !t.CanBeViewedBy(query.ActorID, query.ActorRole.IsAdmin()) {
		uc.logger.Warnw("principal cannot view ticket", "ticket_id", t.ID(), "actor_id", query.ActorID)
		return nil, errors.NewAccessError("ticket")
	}
	return t, nil
}
