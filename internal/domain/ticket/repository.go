package ticket

import "context"

// Repository persists tickets. Lookups return a not-found AppError when no
// ticket matches.
type Repository interface {
	Save(ctx context.Context, ticket *Ticket) error
	UpdateStatus(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	GetByNumber(ctx context.Context, number string) (*Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Ticket, error)
	ListAll(ctx context.Context) ([]*Ticket, error)
}

// ReplyRepository persists replies, listed oldest first.
type ReplyRepository interface {
	Save(ctx context.Context, reply *Reply) error
	ListByTicket(ctx context.Context, ticketID string) ([]*Reply, error)
}
