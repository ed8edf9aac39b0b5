package dto

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/shared"
)

type FeedbackDTO struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Email       string              `json:"email"`
	Rating      int                 `json:"rating"`
	Comment     string              `json:"comment"`
	Category    string              `json:"category"`
	Status      string              `json:"status"`
	Attachments []shared.Attachment `json:"attachments"`
	CreatedAt   time.Time           `json:"createdAt"`
	ReviewedAt  *time.Time          `json:"reviewedAt"`
}

func ToFeedbackDTO(f *feedback.Feedback) *FeedbackDTO {
	if f == nil {
		return nil
	}
	return &FeedbackDTO{
		ID:          f.ID(),
		UserID:      f.OwnerID(),
		Email:       f.OwnerEmail(),
		Rating:      f.Rating().Int(),
		Comment:     f.Comment(),
		Category:    f.Category(),
		Status:      f.Status().String(),
		Attachments: f.Attachments(),
		CreatedAt:   f.CreatedAt(),
		ReviewedAt:  f.ReviewedAt(),
	}
}

func ToFeedbackDTOs(items []*feedback.Feedback) []*FeedbackDTO {
	out := make([]*FeedbackDTO, 0, len(items))
	for _, f := range items {
		out = append(out, ToFeedbackDTO(f))
	}
	return out
}
