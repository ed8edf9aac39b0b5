package usecases

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	vo "github.com/frankincense-labs/cx-management/internal/domain/feedback/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type SubmitFeedbackCommand struct {
	OwnerID     string
	OwnerEmail  string
	Rating      int
	Comment     string
	Category    string
	Attachments []shared.Attachment
}

type SubmitFeedbackUseCase struct {
	feedbackRepo feedback.Repository
	logger       logger.Interface
}

func NewSubmitFeedbackUseCase(
	feedbackRepo feedback.Repository,
	logger logger.Interface,
) *SubmitFeedbackUseCase {
	return &SubmitFeedbackUseCase{
		feedbackRepo: feedbackRepo,
		logger:       logger,
	}
}

func (uc *SubmitFeedbackUseCase) Execute(ctx context.Context, cmd SubmitFeedbackCommand) (*dto.FeedbackDTO, error) {
	uc.logger.Infow("executing submit feedback use case", "owner_id", cmd.OwnerID, "rating", cmd.Rating)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Warnw("invalid submit feedback command", "error", err)
		return nil, err
	}

	f, err := feedback.NewFeedback(cmd.OwnerID, cmd.OwnerEmail, cmd.Rating, cmd.Comment, cmd.Category, cmd.Attachments)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.feedbackRepo.Save(ctx, f); err != nil {
		uc.logger.Errorw("failed to save feedback", "error", err)
		return nil, err
	}

	uc.logger.Infow("feedback submitted", "feedback_id", f.ID(), "owner_id", cmd.OwnerID)
	return dto.ToFeedbackDTO(f), nil
}

func (uc *SubmitFeedbackUseCase) validateCommand(cmd SubmitFeedbackCommand) error {
	if cmd.OwnerID == "" {
		return errors.NewNotSignedInError()
	}
	if _, err := vo.NewRating(cmd.Rating); err != nil {
		return errors.NewValidationError("please select a rating", err.Error())
	}
	if err := feedback.ValidateComment(cmd.Comment); err != nil {
		return errors.NewValidationError(err.Error())
	}
	for _, a := range cmd.Attachments {
		if err := a.Validate(); err != nil {
			return errors.NewValidationError("invalid attachment", err.Error())
		}
	}
	return nil
}
