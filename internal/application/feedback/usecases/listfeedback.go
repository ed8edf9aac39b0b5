package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// ListFeedbackUseCase reads feedback once, newest first.
type ListFeedbackUseCase struct {
	feedbackRepo feedback.Repository
	logger       logger.Interface
}

func NewListFeedbackUseCase(feedbackRepo feedback.Repository, logger logger.Interface) *ListFeedbackUseCase {
	return &ListFeedbackUseCase{feedbackRepo: feedbackRepo, logger: logger}
}

func (uc *ListFeedbackUseCase) ListMine(ctx context.Context, ownerID string) ([]*dto.FeedbackDTO, error) {
	items, err := uc.feedbackRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		uc.logger.Errorw("failed to list feedback", "owner_id", ownerID, "error", err)
		return nil, err
	}
	livequery.SortNewestFirst(items)
	return dto.ToFeedbackDTOs(items), nil
}

func (uc *ListFeedbackUseCase) ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.FeedbackDTO, error) {
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can list all feedback")
	}
	items, err := uc.feedbackRepo.ListAll(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list all feedback", "error", err)
		return nil, err
	}
	return dto.ToFeedbackDTOs(items), nil
}
