package feedback

import (
	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

type SubmitFeedbackRequest struct {
	Rating      int                          `json:"rating" validate:"required,gte=1,lte=5"`
	Comment     string                       `json:"comment" validate:"required"`
	Category    string                       `json:"category" validate:"omitempty,max=64"`
	Attachments []handlers.AttachmentRequest `json:"attachments" validate:"omitempty,max=10,dive"`
}

// ReviewBoardQuery filters the staff review list. Dates are YYYY-MM-DD.
type ReviewBoardQuery struct {
	Rating    int    `form:"rating" validate:"gte=0,lte=5"`
	Status    string `form:"status" validate:"omitempty,oneof=submitted reviewed"`
	Email     string `form:"email"`
	Category  string `form:"category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (q ReviewBoardQuery) toFilter() (aggregation.FeedbackReviewFilter, error) {
	r, err := aggregation.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return aggregation.FeedbackReviewFilter{}, errors.NewValidationError("invalid date range", err.Error())
	}
	return aggregation.FeedbackReviewFilter{
		Rating:   q.Rating,
		Status:   q.Status,
		Email:    q.Email,
		Category: q.Category,
		Range:    r,
	}, nil
}

type ReviewBoardResponse struct {
	Feedback   []*dto.FeedbackDTO `json:"feedback"`
	Customers  []string           `json:"customers"`
	Categories []string           `json:"categories"`
}
