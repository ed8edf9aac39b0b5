package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type AddReplyCommand struct {
	TicketID   string
	Message    string
	ActorID    string
	ActorEmail string
	ActorRole  uservo.Role
}

type AddReplyUseCase struct {
	ticketRepo     ticket.Repository
	replyRepo      ticket.ReplyRepository
	eventPublisher events.EventPublisher
	logger         logger.Interface
}

func NewAddReplyUseCase(
	ticketRepo ticket.Repository,
	replyRepo ticket.ReplyRepository,
	eventPublisher events.EventPublisher,
	logger logger.Interface,
) *AddReplyUseCase {
	return &AddReplyUseCase{
		ticketRepo:     ticketRepo,
		replyRepo:      replyRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (uc *AddReplyUseCase) Execute(ctx context.Context, cmd AddReplyCommand) (*dto.ReplyDTO, error) {
	if !cmd.ActorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can reply to tickets")
	}

	reply, err := ticket.NewReply(cmd.TicketID, cmd.ActorID, cmd.ActorEmail, cmd.Message)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	t, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		return nil, err
	}

	if err := uc.replyRepo.Save(ctx, reply); err != nil {
		uc.logger.Errorw("failed to save reply", "ticket_id", cmd.TicketID, "error", err)
		return nil, err
	}

	if err := uc.eventPublisher.Publish(ticket.NewReplyAddedEvent(t, reply)); err != nil {
		uc.logger.Warnw("failed to publish reply added event", "ticket_id", t.ID(), "error", err)
	}

	uc.logger.Infow("reply added", "ticket_id", t.ID(), "reply_id", reply.ID())
	return dto.ToReplyDTO(reply), nil
}
