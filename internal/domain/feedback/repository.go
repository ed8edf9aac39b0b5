package feedback

import "context"

// Repository persists feedback records. Writes are last-writer-wins at
// single-record granularity.
type Repository interface {
	Save(ctx context.Context, feedback *Feedback) error
	Update(ctx context.Context, feedback *Feedback) error
	GetByID(ctx context.Context, id string) (*Feedback, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Feedback, error)
	ListAll(ctx context.Context) ([]*Feedback, error)
}
