package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type ReviewFeedbackCommand struct {
	FeedbackID string
	ActorID    string
	ActorEmail string
	ActorRole  uservo.Role
}

// ReviewFeedbackUseCase marks feedback as reviewed. Reviewing twice is a
// no-op that keeps the first review time.
type ReviewFeedbackUseCase struct {
	feedbackRepo   feedback.Repository
	eventPublisher events.EventPublisher
	logger         logger.Interface
}

func NewReviewFeedbackUseCase(
	feedbackRepo feedback.Repository,
	eventPublisher events.EventPublisher,
	logger logger.Interface,
) *ReviewFeedbackUseCase {
	return &ReviewFeedbackUseCase{
		feedbackRepo:   feedbackRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (uc *ReviewFeedbackUseCase) Execute(ctx context.Context, cmd ReviewFeedbackCommand) (*dto.FeedbackDTO, error) {
	if !cmd.ActorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can review feedback")
	}
	if cmd.FeedbackID == "" {
		return nil, errors.NewValidationError("feedback ID is required")
	}

	f, err := uc.feedbackRepo.GetByID(ctx, cmd.FeedbackID)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	if !f.MarkReviewed(now) {
		uc.logger.Debugw("feedback already reviewed", "feedback_id", f.ID())
		return dto.ToFeedbackDTO(f), nil
	}

	if err := uc.feedbackRepo.Update(ctx, f); err != nil {
		uc.logger.Errorw("failed to update feedback", "feedback_id", f.ID(), "error", err)
		return nil, err
	}

	if err := uc.eventPublisher.Publish(feedback.NewReviewedEvent(f, cmd.ActorEmail, now)); err != nil {
		uc.logger.Warnw("failed to publish feedback reviewed event", "feedback_id", f.ID(), "error", err)
	}

	uc.logger.Infow("feedback reviewed", "feedback_id", f.ID(), "reviewed_by", cmd.ActorID)
	return dto.ToFeedbackDTO(f), nil
}
