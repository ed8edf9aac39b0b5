package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
)

type SubmitFeedbackExecutor interface {
	Execute(ctx context.Context, cmd SubmitFeedbackCommand) (*dto.FeedbackDTO, error)
}

type ReviewFeedbackExecutor interface {
	Execute(ctx context.Context, cmd ReviewFeedbackCommand) (*dto.FeedbackDTO, error)
}
