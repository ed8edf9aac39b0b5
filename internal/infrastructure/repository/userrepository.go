package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/mappers"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
	"github.com/frankincense-labs/cx-management/internal/shared/db"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// ProfileRepository stores profile records keyed by principal id.
type ProfileRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database, mapper: mappers.NewUserMapper()}
}

func (r *ProfileRepository) Create(ctx context.Context, p *user.Profile) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.ProfileToModel(p)).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("profile already exists", p.ID())
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, principalID string) (*user.Profile, error) {
	var model models.ProfileModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", principalID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("profile not found", principalID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return r.mapper.ProfileToDomain(&model)
}

func (r *ProfileRepository) Delete(ctx context.Context, principalID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("id = ?", principalID).Delete(&models.ProfileModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("profile not found", principalID)
	}
	return nil
}

// CredentialRepository stores password and federated credentials.
type CredentialRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
}

func NewCredentialRepository(database *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: database, mapper: mappers.NewUserMapper()}
}

func (r *CredentialRepository) Create(ctx context.Context, c *user.Credential) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.CredentialToModel(c)).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("credential already exists", c.Email())
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// Update records the last sign-in and any rotated password hash.
func (r *CredentialRepository) Update(ctx context.Context, c *user.Credential) error {
	model := r.mapper.CredentialToModel(c)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CredentialModel{}).
		Where("principal_id = ?", model.PrincipalID).
		Updates(map[string]interface{}{
			"password_hash":   model.PasswordHash,
			"last_sign_in_at": model.LastSignInAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update credential: %w", result.Error)
	}
	return nil
}

func (r *CredentialRepository) GetByPrincipalID(ctx context.Context, principalID string) (*user.Credential, error) {
	return r.first(ctx, "principal_id = ?", principalID)
}

// GetByEmail looks up the password credential registered for email.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*user.Credential, error) {
	return r.first(ctx, "email = ? AND method = ?", email, vo.AuthMethodPassword.String())
}

func (r *CredentialRepository) GetByProviderSubject(ctx context.Context, subject string) (*user.Credential, error) {
	return r.first(ctx, "provider_subject = ?", subject)
}

func (r *CredentialRepository) Delete(ctx context.Context, principalID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("principal_id = ?", principalID).Delete(&models.CredentialModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("credential not found", principalID)
	}
	return nil
}

func (r *CredentialRepository) first(ctx context.Context, cond string, args ...interface{}) (*user.Credential, error) {
	var model models.CredentialModel
	if err := db.GetTxFromContext(ctx, r.db).Where(cond, args...).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("credential not found")
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return r.mapper.CredentialToDomain(&model)
}
