package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	vo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type CreateTicketCommand struct {
	OwnerID     string
	OwnerEmail  string
	Subject     string
	Description string
	Priority    string
	Attachments []shared.Attachment
}

type CreateTicketUseCase struct {
	ticketRepo ticket.Repository
	numbers    ticket.NumberGenerator
	logger     logger.Interface
}

func NewCreateTicketUseCase(
	ticketRepo ticket.Repository,
	numbers ticket.NumberGenerator,
	logger logger.Interface,
) *CreateTicketUseCase {
	return &CreateTicketUseCase{
		ticketRepo: ticketRepo,
		numbers:    numbers,
		logger:     logger,
	}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, cmd CreateTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing create ticket use case", "owner_id", cmd.OwnerID, "priority", cmd.Priority)

	priority, err := uc.validateCommand(cmd)
	if err != nil {
		uc.logger.Warnw("invalid create ticket command", "error", err)
		return nil, err
	}

	t, err := ticket.NewTicket(cmd.OwnerID, cmd.OwnerEmail, cmd.Subject, cmd.Description, priority, cmd.Attachments)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	number, err := uc.numbers.Generate(ctx)
	if err != nil {
		uc.logger.Errorw("failed to generate ticket number", "error", err)
		return nil, errors.NewInternalError("failed to create ticket")
	}
	if err := t.SetNumber(number); err != nil {
		return nil, errors.NewInternalError("failed to create ticket", err.Error())
	}

	if err := uc.ticketRepo.Save(ctx, t); err != nil {
		uc.logger.Errorw("failed to save ticket", "error", err)
		return nil, err
	}

	uc.logger.Infow("ticket created successfully", "ticket_id", t.ID(), "number", t.Number())
	return dto.ToTicketDTO(t), nil
}

func (uc *CreateTicketUseCase) validateCommand(cmd CreateTicketCommand) (vo.Priority, error) {
	if cmd.OwnerID == "" {
		return "", errors.NewNotSignedInError()
	}
	if err := ticket.ValidateSubject(cmd.Subject); err != nil {
		return "", errors.NewValidationError(err.Error())
	}
	if err := ticket.ValidateDescription(cmd.Description); err != nil {
		return "", errors.NewValidationError(err.Error())
	}
	priority, err := vo.NewPriority(cmd.Priority)
	if err != nil {
		return "", errors.NewValidationError("invalid priority", err.Error())
	}
	for _, a := range cmd.Attachments {
		if err := a.Validate(); err != nil {
			return "", errors.NewValidationError("invalid attachment", err.Error())
		}
	}
	return priority, nil
}
