// Package feedback models customer feedback records and their one-way
// review transition.
package feedback

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	vo "github.com/frankincense-labs/cx-management/internal/domain/feedback/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

const (
	MinCommentLength  = 10
	MaxCommentLength  = 5000
	MaxCategoryLength = 100
)

// Feedback is owned by the submitting customer. Only staff move it to
// reviewed.
type Feedback struct {
	id          string
	ownerID     string
	ownerEmail  string
	rating      vo.Rating
	comment     string
	category    string
	status      vo.FeedbackStatus
	attachments []shared.Attachment
	createdAt   time.Time
	reviewedAt  *time.Time
}

// ValidateComment checks the trimmed comment length.
func ValidateComment(comment string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(comment))
	if n < MinCommentLength {
		return fmt.Errorf("comment must be at least %d characters", MinCommentLength)
	}
	if n > MaxCommentLength {
		return fmt.Errorf("comment exceeds maximum length of %d characters", MaxCommentLength)
	}
	return nil
}

// NewFeedback creates a submitted feedback record with no review timestamp.
func NewFeedback(
	ownerID, ownerEmail string,
	rating int,
	comment, category string,
	attachments []shared.Attachment,
) (*Feedback, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if ownerEmail == "" {
		return nil, fmt.Errorf("owner email is required")
	}
	r, err := vo.NewRating(rating)
	if err != nil {
		return nil, err
	}
	if err := ValidateComment(comment); err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if len(category) > MaxCategoryLength {
		return nil, fmt.Errorf("category exceeds maximum length of %d characters", MaxCategoryLength)
	}
	for _, a := range attachments {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}

	return &Feedback{
		ownerID:     ownerID,
		ownerEmail:  ownerEmail,
		rating:      r,
		comment:     comment,
		category:    category,
		status:      vo.StatusSubmitted,
		attachments: shared.CopyAttachments(attachments),
		createdAt:   biztime.NowUTC(),
	}, nil
}

// ReconstructFeedback rebuilds a record from persistence.
func ReconstructFeedback(
	id, ownerID, ownerEmail string,
	rating int,
	comment, category string,
	status vo.FeedbackStatus,
	attachments []shared.Attachment,
	createdAt time.Time,
	reviewedAt *time.Time,
) (*Feedback, error) {
	if id == "" {
		return nil, fmt.Errorf("feedback ID cannot be empty")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	return &Feedback{
		id:          id,
		ownerID:     ownerID,
		ownerEmail:  ownerEmail,
		rating:      vo.Rating(rating),
		comment:     comment,
		category:    category,
		status:      status,
		attachments: shared.CopyAttachments(attachments),
		createdAt:   createdAt,
		reviewedAt:  reviewedAt,
	}, nil
}

func (f *Feedback) ID() string { return f.id }
func (f *Feedback) OwnerID() string { return f.ownerID }
func (f *Feedback) OwnerEmail() string { return f.ownerEmail }
func (f *Feedback) Rating() vo.Rating { return f.rating }
func (f *Feedback) Comment() string { return f.comment }
func (f *Feedback) Category() string { return f.category }
func (f *Feedback) Status() vo.FeedbackStatus { return f.status }
func (f *Feedback) CreatedAt() time.Time { return f.createdAt }
func (f *Feedback) ReviewedAt() *time.Time { return f.reviewedAt }

func (f *Feedback) Attachments() []shared.Attachment {
	return shared.CopyAttachments(f.attachments)
}

// SetID assigns the storage identifier once.
func (f *Feedback) SetID(id string) error {
	if f.id != "" {
		return fmt.Errorf("feedback ID is already set")
	}
	if id == "" {
		return fmt.Errorf("feedback ID cannot be empty")
	}
	f.id = id
	return nil
}

// MarkReviewed moves the record to reviewed and reports whether anything
// changed. A second call keeps the first review timestamp. The timestamp is
// never earlier than createdAt, even under clock skew.
func (f *Feedback) MarkReviewed(at time.Time) bool {
	if f.status.IsReviewed() {
		return false
	}
	if at.Before(f.createdAt) {
		at = f.createdAt
	}
	f.status = vo.StatusReviewed
	f.reviewedAt = &at
	return true
}

// IsOwnedBy reports whether principalID submitted this record.
func (f *Feedback) IsOwnedBy(principalID string) bool {
	return f.ownerID == principalID
}
