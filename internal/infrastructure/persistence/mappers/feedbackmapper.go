package mappers

import (
	"fmt"

	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	vo "github.com/frankincense-labs/cx-management/internal/domain/feedback/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
)

type FeedbackMapper interface {
	ToModel(f *feedback.Feedback) *models.FeedbackModel
	ToDomain(model *models.FeedbackModel) (*feedback.Feedback, error)
	ToDomainList(ms []models.FeedbackModel) ([]*feedback.Feedback, error)
}

type FeedbackMapperImpl struct{}

func NewFeedbackMapper() FeedbackMapper {
	return &FeedbackMapperImpl{}
}

func (m *FeedbackMapperImpl) ToModel(f *feedback.Feedback) *models.FeedbackModel {
	return &models.FeedbackModel{
		ID:          f.ID(),
		UserID:      f.OwnerID(),
		Email:       f.OwnerEmail(),
		Rating:      f.Rating().Int(),
		Comment:     f.Comment(),
		Category:    f.Category(),
		Status:      f.Status().String(),
		Attachments: attachmentsToModel(f.Attachments()),
		CreatedAt:   toMillis(f.CreatedAt()),
		ReviewedAt:  toMillisPtr(f.ReviewedAt()),
	}
}

func (m *FeedbackMapperImpl) ToDomain(model *models.FeedbackModel) (*feedback.Feedback, error) {
	if model == nil {
		return nil, nil
	}
	f, err := feedback.ReconstructFeedback(
		model.ID,
		model.UserID,
		model.Email,
		model.Rating,
		model.Comment,
		model.Category,
		vo.FeedbackStatus(model.Status),
		attachmentsToDomain(model.Attachments),
		fromMillis(model.CreatedAt),
		fromMillisPtr(model.ReviewedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct feedback %s: %w", model.ID, err)
	}
	return f, nil
}

func (m *FeedbackMapperImpl) ToDomainList(ms []models.FeedbackModel) ([]*feedback.Feedback, error) {
	out := make([]*feedback.Feedback, 0, len(ms))
	for i := range ms {
		f, err := m.ToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
