package usecases

import (
	"context"
	"sync"

	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
)

type mockTicketRepository struct {
	SaveFunc         func(ctx context.Context, t *ticket.Ticket) error
	UpdateStatusFunc func(ctx context.Context, t *ticket.Ticket) error
	GetByIDFunc      func(ctx context.Context, id string) (*ticket.Ticket, error)
	GetByNumberFunc  func(ctx context.Context, number string) (*ticket.Ticket, error)
	ListByOwnerFunc  func(ctx context.Context, ownerID string) ([]*ticket.Ticket, error)
	ListAllFunc      func(ctx context.Context) ([]*ticket.Ticket, error)

	calls []string
}

func (m *mockTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	m.calls = append(m.calls, "Save")
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return t.SetID("ticket-doc-1")
}

func (m *mockTicketRepository) UpdateStatus(ctx context.Context, t *ticket.Ticket) error {
	m.calls = append(m.calls, "UpdateStatus")
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	m.calls = append(m.calls, "GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTicketRepository) GetByNumber(ctx context.Context, number string) (*ticket.Ticket, error) {
	m.calls = append(m.calls, "GetByNumber")
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, number)
	}
	return nil, nil
}

func (m *mockTicketRepository) ListByOwner(ctx context.Context, ownerID string) ([]*ticket.Ticket, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTicketRepository) ListAll(ctx context.Context) ([]*ticket.Ticket, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

type mockReplyRepository struct {
	SaveFunc         func(ctx context.Context, r *ticket.Reply) error
	ListByTicketFunc func(ctx context.Context, ticketID string) ([]*ticket.Reply, error)

	saveCalls int
}

func (m *mockReplyRepository) Save(ctx context.Context, r *ticket.Reply) error {
	m.saveCalls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return r.SetID("reply-doc-1")
}

func (m *mockReplyRepository) ListByTicket(ctx context.Context, ticketID string) ([]*ticket.Reply, error) {
	if m.ListByTicketFunc != nil {
		return m.ListByTicketFunc(ctx, ticketID)
	}
	return nil, nil
}

type mockNumberGenerator struct {
	number string
	err    error
}

func (m *mockNumberGenerator) Generate(context.Context) (string, error) {
	return m.number, m.err
}

type mockEventPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

func (m *mockEventPublisher) Publish(event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventPublisher) Events() []events.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.DomainEvent(nil), m.published...)
}
