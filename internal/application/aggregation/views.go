package aggregation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// FeedbackReader is the read side of the feedback repository.
type FeedbackReader interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*feedback.Feedback, error)
	ListAll(ctx context.Context) ([]*feedback.Feedback, error)
}

// TicketReader is the read side of the ticket repository.
type TicketReader interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*ticket.Ticket, error)
	ListAll(ctx context.Context) ([]*ticket.Ticket, error)
}

// InteractionsQuery selects whose records are merged. Staff see everything,
// customers only their own.
type InteractionsQuery struct {
	ActorID   string
	ActorRole uservo.Role
	Filter    Filter
}

type InteractionsResult struct {
	Items         []Interaction
	Total         int
	Customers     []string
	AdminStats    *AdminStats
	CustomerStats *CustomerStats
}

type TicketBoardResult struct {
	Tickets   []*ticket.Ticket
	Counts    TicketCounts
	Customers []string
}

type FeedbackReviewResult struct {
	Feedback   []*feedback.Feedback
	Customers  []string
	Categories []string
}

// Views computes the one-shot read models behind the dashboards and staff
// boards. Live variants go through Feed.
type Views struct {
	feedback FeedbackReader
	tickets  TicketReader
	logger   logger.Interface
}

func NewViews(feedbackRepo FeedbackReader, ticketRepo TicketReader, log logger.Interface) *Views {
	return &Views{feedback: feedbackRepo, tickets: ticketRepo, logger: log}
}

func (v *Views) Interactions(ctx context.Context, q InteractionsQuery) (*InteractionsResult, error) {
	fb, tk, err := v.load(ctx, q.ActorID, q.ActorRole.IsAdmin())
	if err != nil {
		return nil, err
	}

	merged := Merge(fb, tk)
	result := &InteractionsResult{
		Items:     q.Filter.Apply(merged),
		Total:     len(merged),
		Customers: UniqueEmails(merged),
	}
	if q.ActorRole.IsAdmin() {
		stats := ComputeAdminStats(fb, tk)
		result.AdminStats = &stats
	} else {
		stats := ComputeCustomerStats(fb, tk)
		result.CustomerStats = &stats
	}
	return result, nil
}

func (v *Views) TicketBoard(ctx context.Context, actorRole uservo.Role, filter TicketBoardFilter) (*TicketBoardResult, error) {
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can open the ticket board")
	}
	tickets, err := v.tickets.ListAll(ctx)
	if err != nil {
		v.logger.Errorw("failed to load ticket board", "error", err)
		return nil, err
	}
	livequery.SortNewestFirst(tickets)

	// Tab badges count every ticket, not just the filtered ones.
	return &TicketBoardResult{
		Tickets:   filter.Apply(tickets),
		Counts:    CountTickets(tickets),
		Customers: TicketCustomers(tickets),
	}, nil
}

func (v *Views) FeedbackReview(ctx context.Context, actorRole uservo.Role, filter FeedbackReviewFilter) (*FeedbackReviewResult, error) {
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can review feedback")
	}
	items, err := v.feedback.ListAll(ctx)
	if err != nil {
		v.logger.Errorw("failed to load feedback review list", "error", err)
		return nil, err
	}
	livequery.SortNewestFirst(items)

	return &FeedbackReviewResult{
		Feedback:   filter.Apply(items),
		Customers:  FeedbackCustomers(items),
		Categories: FeedbackCategories(items),
	}, nil
}

func (v *Views) load(ctx context.Context, actorID string, all bool) ([]*feedback.Feedback, []*ticket.Ticket, error) {
	// Each goroutine writes its own variable; Wait orders the reads.
	var (
		fb []*feedback.Feedback
		tk []*ticket.Ticket
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if all {
			fb, err = v.feedback.ListAll(gctx)
		} else {
			fb, err = v.feedback.ListByOwner(gctx, actorID)
		}
		if err != nil {
			v.logger.Errorw("failed to load feedback for interactions", "actor_id", actorID, "error", err)
		}
		return err
	})

	g.Go(func() error {
		var err error
		if all {
			tk, err = v.tickets.ListAll(gctx)
		} else {
			tk, err = v.tickets.ListByOwner(gctx, actorID)
		}
		if err != nil {
			v.logger.Errorw("failed to load tickets for interactions", "actor_id", actorID, "error", err)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fb, tk, nil
}
