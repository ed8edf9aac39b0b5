package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/application/livequery"
	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/mappers"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
	"github.com/frankincense-labs/cx-management/internal/shared/db"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/id"
)

// FeedbackRepository stores feedback records and serves the feedback live
// queries.
type FeedbackRepository struct {
	db       *gorm.DB
	mapper   mappers.FeedbackMapper
	notifier livequery.Notifier
}

func NewFeedbackRepository(database *gorm.DB, notifier livequery.Notifier) *FeedbackRepository {
	return &FeedbackRepository{
		db:       database,
		mapper:   mappers.NewFeedbackMapper(),
		notifier: notifier,
	}
}

func (r *FeedbackRepository) Save(ctx context.Context, f *feedback.Feedback) error {
	if f.ID() == "" {
		docID, err := id.NewDocumentID()
		if err != nil {
			return fmt.Errorf("failed to generate feedback id: %w", err)
		}
		if err := f.SetID(docID); err != nil {
			return err
		}
	}

	model := r.mapper.ToModel(f)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("feedback already exists", f.ID())
		}
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	notify(ctx, r.notifier, feedbackChange(f, livequery.ChangeAdded))
	return nil
}

// Update overwrites the review state of an existing record.
func (r *FeedbackRepository) Update(ctx context.Context, f *feedback.Feedback) error {
	model := r.mapper.ToModel(f)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.FeedbackModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"reviewed_at": model.ReviewedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update feedback: %w", result.Error)
	}

	notify(ctx, r.notifier, feedbackChange(f, livequery.ChangeModified))
	return nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, feedbackID string) (*feedback.Feedback, error) {
	var model models.FeedbackModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", feedbackID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("feedback not found", feedbackID)
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *FeedbackRepository) ListByOwner(ctx context.Context, ownerID string) ([]*feedback.Feedback, error) {
	return r.Fetch(ctx, livequery.From(livequery.CollectionFeedback).Where(livequery.FieldUserID, ownerID))
}

func (r *FeedbackRepository) ListAll(ctx context.Context) ([]*feedback.Feedback, error) {
	return r.Fetch(ctx, livequery.From(livequery.CollectionFeedback).Sorted(livequery.FieldCreatedAt, livequery.Descending))
}

// Fetch evaluates a live query against the feedback table.
func (r *FeedbackRepository) Fetch(ctx context.Context, q livequery.Query) ([]*feedback.Feedback, error) {
	tx, err := scopeQuery(db.GetTxFromContext(ctx, r.db).Model(&models.FeedbackModel{}), q, livequery.CollectionFeedback)
	if err != nil {
		return nil, err
	}
	var ms []models.FeedbackModel
	if err := tx.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return r.mapper.ToDomainList(ms)
}

func feedbackChange(f *feedback.Feedback, kind livequery.ChangeKind) livequery.Change {
	return livequery.Change{
		Collection: livequery.CollectionFeedback,
		DocumentID: f.ID(),
		Kind:       kind,
		Fields:     map[string]string{livequery.FieldUserID: f.OwnerID()},
	}
}
