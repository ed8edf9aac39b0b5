package valueobjects

import "fmt"

// FeedbackStatus moves one way: submitted to reviewed.
type FeedbackStatus string

const (
	StatusSubmitted FeedbackStatus = "submitted"
	StatusReviewed  FeedbackStatus = "reviewed"
)

func (s FeedbackStatus) String() string {
	return string(s)
}

func (s FeedbackStatus) IsValid() bool {
	return s == StatusSubmitted || s == StatusReviewed
}

func (s FeedbackStatus) IsSubmitted() bool {
	return s == StatusSubmitted
}

func (s FeedbackStatus) IsReviewed() bool {
	return s == StatusReviewed
}

func NewFeedbackStatus(s string) (FeedbackStatus, error) {
	status := FeedbackStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid feedback status: %s", s)
	}
	return status, nil
}
