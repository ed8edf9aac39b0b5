package usecases

import (
	"context"
	"sync"

	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
)

type mockFeedbackRepository struct {
	SaveFunc        func(ctx context.Context, f *feedback.Feedback) error
	UpdateFunc      func(ctx context.Context, f *feedback.Feedback) error
	GetByIDFunc     func(ctx context.Context, id string) (*feedback.Feedback, error)
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]*feedback.Feedback, error)
	ListAllFunc     func(ctx context.Context) ([]*feedback.Feedback, error)

	saveCalls   int
	updateCalls int
}

func (m *mockFeedbackRepository) Save(ctx context.Context, f *feedback.Feedback) error {
	m.saveCalls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, f)
	}
	return f.SetID("generated-id")
}

func (m *mockFeedbackRepository) Update(ctx context.Context, f *feedback.Feedback) error {
	m.updateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, f)
	}
	return nil
}

func (m *mockFeedbackRepository) GetByID(ctx context.Context, id string) (*feedback.Feedback, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockFeedbackRepository) ListByOwner(ctx context.Context, ownerID string) ([]*feedback.Feedback, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFeedbackRepository) ListAll(ctx context.Context) ([]*feedback.Feedback, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

type mockEventPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
	err       error
}

func (m *mockEventPublisher) Publish(event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return m.err
}

func (m *mockEventPublisher) Events() []events.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.DomainEvent(nil), m.published...)
}
