package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
)

type CreateTicketExecutor interface {
	Execute(ctx context.Context, cmd CreateTicketCommand) (*dto.TicketDTO, error)
}

type ChangeStatusExecutor interface {
	Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.TicketDTO, error)
}

type AddReplyExecutor interface {
	Execute(ctx context.Context, cmd AddReplyCommand) (*dto.ReplyDTO, error)
}

type GetTicketExecutor interface {
	Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDetailDTO, error)
}
