package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	vo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type ChangeStatusCommand struct {
	TicketID  string
	NewStatus string
	ActorID   string
	ActorRole uservo.Role
}

// ChangeStatusUseCase lets staff move a ticket to any status.
type ChangeStatusUseCase struct {
	ticketRepo     ticket.Repository
	eventPublisher events.EventPublisher
	logger         logger.Interface
}

func NewChangeStatusUseCase(
	ticketRepo ticket.Repository,
	eventPublisher events.EventPublisher,
	logger logger.Interface,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		ticketRepo:     ticketRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.TicketDTO, error) {
	if !cmd.ActorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can change ticket status")
	}
	status, err := vo.NewTicketStatus(cmd.NewStatus)
	if err != nil {
		return nil, errors.NewValidationError("invalid status", err.Error())
	}

	t, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		return nil, err
	}

	oldStatus := t.Status()
	now := biztime.NowUTC()
	if err := t.ChangeStatus(status, now); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.ticketRepo.UpdateStatus(ctx, t); err != nil {
		uc.logger.Errorw("failed to update ticket status", "ticket_id", t.ID(), "error", err)
		return nil, err
	}

	if oldStatus != status {
		if err := uc.eventPublisher.Publish(ticket.NewStatusChangedEvent(t, oldStatus, now)); err != nil {
			uc.logger.Warnw("failed to publish status changed event", "ticket_id", t.ID(), "error", err)
		}
	}

	uc.logger.Infow("ticket status changed",
		"ticket_id", t.ID(),
		"old_status", oldStatus,
		"new_status", status,
		"actor_id", cmd.ActorID,
	)
	return dto.ToTicketDTO(t), nil
}
