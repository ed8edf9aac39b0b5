package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/mappers"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
	"github.com/frankincense-labs/cx-management/internal/shared/db"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/id"
)

type TicketRepository struct {
	db       *gorm.DB
	mapper   mappers.TicketMapper
	notifier livequery.Notifier
}

func NewTicketRepository(database *gorm.DB, notifier livequery.Notifier) *TicketRepository {
	return &TicketRepository{
		db:       database,
		mapper:   mappers.NewTicketMapper(),
		notifier: notifier,
	}
}

func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	if t.ID() == "" {
		docID, err := id.NewDocumentID()
		if err != nil {
			return fmt.Errorf("failed to generate ticket id: %w", err)
		}
		if err := t.SetID(docID); err != nil {
			return err
		}
	}

	model := r.mapper.ToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("ticket number already in use", t.Number())
		}
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	notify(ctx, r.notifier, ticketChange(t, livequery.ChangeAdded))
	return nil
}

// UpdateStatus writes the status fields only. Concurrent writers are
// last-writer-wins.
func (r *TicketRepository) UpdateStatus(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"updated_at":  model.UpdatedAt,
			"resolved_at": model.ResolvedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}

	notify(ctx, r.notifier, ticketChange(t, livequery.ChangeModified))
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID string) (*ticket.Ticket, error) {
	return r.first(ctx, "id = ?", ticketID)
}

func (r *TicketRepository) GetByNumber(ctx context.Context, number string) (*ticket.Ticket, error) {
	return r.first(ctx, "number = ?", number)
}

func (r *TicketRepository) first(ctx context.Context, cond string, arg string) (*ticket.Ticket, error) {
	var model models.TicketModel
	if err := db.GetTxFromContext(ctx, r.db).Where(cond, arg).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ticket not found", arg)
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) ListByOwner(ctx context.Context, ownerID string) ([]*ticket.Ticket, error) {
	return r.Fetch(ctx, livequery.From(livequery.CollectionTickets).Where(livequery.FieldUserID, ownerID))
}

func (r *TicketRepository) ListAll(ctx context.Context) ([]*ticket.Ticket, error) {
	return r.Fetch(ctx, livequery.From(livequery.CollectionTickets).Sorted(livequery.FieldCreatedAt, livequery.Descending))
}

// Fetch evaluates a live query against the tickets table.
func (r *TicketRepository) Fetch(ctx context.Context, q livequery.Query) ([]*ticket.Ticket, error) {
	tx, err := scopeQuery(db.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}), q, livequery.CollectionTickets)
	if err != nil {
		return nil, err
	}
	var ms []models.TicketModel
	if err := tx.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return r.mapper.ToDomainList(ms)
}

func ticketChange(t *ticket.Ticket, kind livequery.ChangeKind) livequery.Change {
	return livequery.Change{
		Collection: livequery.CollectionTickets,
		DocumentID: t.ID(),
		Kind:       kind,
		Fields:     map[string]string{livequery.FieldUserID: t.OwnerID()},
	}
}

// TicketReplyRepository stores staff replies. Replies whose ticket no
// longer exists are still returned.
type TicketReplyRepository struct {
	db       *gorm.DB
	mapper   mappers.TicketMapper
	notifier livequery.Notifier
}

func NewTicketReplyRepository(database *gorm.DB, notifier livequery.Notifier) *TicketReplyRepository {
	return &TicketReplyRepository{
		db:       database,
		mapper:   mappers.NewTicketMapper(),
		notifier: notifier,
	}
}

func (r *TicketReplyRepository) Save(ctx context.Context, reply *ticket.Reply) error {
	if reply.ID() == "" {
		docID, err := id.NewDocumentID()
		if err != nil {
			return fmt.Errorf("failed to generate reply id: %w", err)
		}
		if err := reply.SetID(docID); err != nil {
			return err
		}
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.ReplyToModel(reply)).Error; err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}

	notify(ctx, r.notifier, livequery.Change{
		Collection: livequery.CollectionTicketReplies,
		DocumentID: reply.ID(),
		Kind:       livequery.ChangeAdded,
		Fields:     map[string]string{livequery.FieldTicketID: reply.TicketID()},
	})
	return nil
}

func (r *TicketReplyRepository) ListByTicket(ctx context.Context, ticketID string) ([]*ticket.Reply, error) {
	return r.Fetch(ctx, livequery.From(livequery.CollectionTicketReplies).
		Where(livequery.FieldTicketID, ticketID).
		Sorted(livequery.FieldCreatedAt, livequery.Ascending))
}

// Fetch evaluates a live query against the replies table.
func (r *TicketReplyRepository) Fetch(ctx context.Context, q livequery.Query) ([]*ticket.Reply, error) {
	tx, err := scopeQuery(db.GetTxFromContext(ctx, r.db).Model(&models.TicketReplyModel{}), q, livequery.CollectionTicketReplies)
	if err != nil {
		return nil, err
	}
	var ms []models.TicketReplyModel
	if err := tx.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return r.mapper.ReplyToDomainList(ms)
}
