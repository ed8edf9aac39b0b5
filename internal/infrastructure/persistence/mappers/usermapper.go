package mappers

import (
	"fmt"

	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/infrastructure/persistence/models"
)

type UserMapper interface {
	ProfileToModel(p *user.Profile) *models.ProfileModel
	ProfileToDomain(model *models.ProfileModel) (*user.Profile, error)
	CredentialToModel(c *user.Credential) *models.CredentialModel
	CredentialToDomain(model *models.CredentialModel) (*user.Credential, error)
}

type UserMapperImpl struct{}

func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

func (m *UserMapperImpl) ProfileToModel(p *user.Profile) *models.ProfileModel {
	return &models.ProfileModel{
		ID:          p.ID(),
		Email:       p.Email(),
		Role:        p.Role().String(),
		DisplayName: p.DisplayName(),
		CreatedAt:   toMillis(p.CreatedAt()),
	}
}

func (m *UserMapperImpl) ProfileToDomain(model *models.ProfileModel) (*user.Profile, error) {
	if model == nil {
		return nil, nil
	}
	p, err := user.ReconstructProfile(
		model.ID,
		model.Email,
		vo.Role(model.Role),
		model.DisplayName,
		fromMillis(model.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct profile %s: %w", model.ID, err)
	}
	return p, nil
}

func (m *UserMapperImpl) CredentialToModel(c *user.Credential) *models.CredentialModel {
	model := &models.CredentialModel{
		PrincipalID:  c.PrincipalID(),
		Email:        c.Email(),
		Method:       c.Method().String(),
		PasswordHash: c.PasswordHash(),
		CreatedAt:    toMillis(c.CreatedAt()),
		LastSignInAt: toMillis(c.LastSignInAt()),
	}
	if subject := c.ProviderSubject(); subject != "" {
		model.ProviderSubject = &subject
	}
	return model
}

func (m *UserMapperImpl) CredentialToDomain(model *models.CredentialModel) (*user.Credential, error) {
	if model == nil {
		return nil, nil
	}
	subject := ""
	if model.ProviderSubject != nil {
		subject = *model.ProviderSubject
	}
	c, err := user.ReconstructCredential(
		model.PrincipalID,
		model.Email,
		vo.AuthMethod(model.Method),
		model.PasswordHash,
		subject,
		fromMillis(model.CreatedAt),
		fromMillis(model.LastSignInAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct credential %s: %w", model.PrincipalID, err)
	}
	return c, nil
}
