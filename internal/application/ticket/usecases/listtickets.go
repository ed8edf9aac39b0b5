package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type ListTicketsUseCase struct {
	ticketRepo ticket.Repository
	replyRepo  ticket.ReplyRepository
	logger     logger.Interface
}

func NewListTicketsUseCase(ticketRepo ticket.Repository, replyRepo ticket.ReplyRepository, logger logger.Interface) *ListTicketsUseCase {
	return &ListTicketsUseCase{ticketRepo: ticketRepo, replyRepo: replyRepo, logger: logger}
}

// ListMine returns the owner's tickets, newest first.
func (uc *ListTicketsUseCase) ListMine(ctx context.Context, ownerID string) ([]*dto.TicketDTO, error) {
	items, err := uc.ticketRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "owner_id", ownerID, "error", err)
		return nil, err
	}
	livequery.SortNewestFirst(items)
	return dto.ToTicketDTOs(items), nil
}

func (uc *ListTicketsUseCase) ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.TicketDTO, error) {
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can list all tickets")
	}
	items, err := uc.ticketRepo.ListAll(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list all tickets", "error", err)
		return nil, err
	}
	return dto.ToTicketDTOs(items), nil
}

// ListReplies returns the replies of a ticket, oldest first. Replies whose
// ticket no longer exists are still returned.
func (uc *ListTicketsUseCase) ListReplies(ctx context.Context, ticketID string) ([]*dto.ReplyDTO, error) {
	replies, err := uc.replyRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		uc.logger.Errorw("failed to list replies", "ticket_id", ticketID, "error", err)
		return nil, err
	}
	return dto.ToReplyDTOs(replies), nil
}
