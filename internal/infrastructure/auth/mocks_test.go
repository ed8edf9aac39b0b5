package auth

import (
	"context"
	"sync"

	"github.com/frankincense-labs/cx-management/internal/domain/user"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// memoryCredentialRepository is an in-memory user.CredentialRepository.
type memoryCredentialRepository struct {
	mu    sync.Mutex
	items map[string]*user.Credential

	UpdateFunc func(ctx context.Context, c *user.Credential) error
}

func newMemoryCredentialRepository() *memoryCredentialRepository {
	return &memoryCredentialRepository{items: make(map[string]*user.Credential)}
}

func (r *memoryCredentialRepository) Create(_ context.Context, c *user.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Method() == c.Method() && existing.Email() == c.Email() {
			return errors.NewConflictError("credential already exists")
		}
	}
	r.items[c.PrincipalID()] = c
	return nil
}

func (r *memoryCredentialRepository) Update(ctx context.Context, c *user.Credential) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.PrincipalID()] = c
	return nil
}

func (r *memoryCredentialRepository) GetByPrincipalID(_ context.Context, principalID string) (*user.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[principalID]; ok {
		return c, nil
	}
	return nil, errors.NewNotFoundError("credential not found")
}

func (r *memoryCredentialRepository) GetByEmail(_ context.Context, email string) (*user.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Method() == vo.AuthMethodPassword && c.Email() == email {
			return c, nil
		}
	}
	return nil, errors.NewNotFoundError("credential not found")
}

func (r *memoryCredentialRepository) GetByProviderSubject(_ context.Context, subject string) (*user.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.ProviderSubject() == subject {
			return c, nil
		}
	}
	return nil, errors.NewNotFoundError("credential not found")
}

func (r *memoryCredentialRepository) Delete(_ context.Context, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[principalID]; !ok {
		return errors.NewNotFoundError("credential not found")
	}
	delete(r.items, principalID)
	return nil
}

func (r *memoryCredentialRepository) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
