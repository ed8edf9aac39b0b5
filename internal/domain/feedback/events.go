package feedback

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
)

const EventTypeFeedbackReviewed = "feedback.reviewed"

// ReviewedEvent is raised when staff first marks feedback as reviewed.
type ReviewedEvent struct {
	events.BaseEvent
	OwnerEmail string
	Rating     int
	ReviewedBy string
}

func NewReviewedEvent(f *Feedback, reviewedBy string, at time.Time) ReviewedEvent {
	return ReviewedEvent{
		BaseEvent:  events.NewBaseEvent(f.ID(), EventTypeFeedbackReviewed, at),
		OwnerEmail: f.OwnerEmail(),
		Rating:     f.Rating().Int(),
		ReviewedBy: reviewedBy,
	}
}
