package ticket

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/usecases"
	domainticket "github.com/frankincense-labs/cx-management/internal/domain/ticket"
	ticketvo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/testutil"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateUC struct {
	cmd    usecases.CreateTicketCommand
	result *dto.TicketDTO
	err    error
}

func (m *mockCreateUC) Execute(ctx context.Context, cmd usecases.CreateTicketCommand) (*dto.TicketDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockChangeStatusUC struct {
	cmd    usecases.ChangeStatusCommand
	result *dto.TicketDTO
	err    error
}

func (m *mockChangeStatusUC) Execute(ctx context.Context, cmd usecases.ChangeStatusCommand) (*dto.TicketDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockAddReplyUC struct {
	cmd    usecases.AddReplyCommand
	result *dto.ReplyDTO
	err    error
}

func (m *mockAddReplyUC) Execute(ctx context.Context, cmd usecases.AddReplyCommand) (*dto.ReplyDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockGetUC struct {
	query  usecases.GetTicketQuery
	result *dto.TicketDetailDTO
	err    error
}

func (m *mockGetUC) Execute(ctx context.Context, query usecases.GetTicketQuery) (*dto.TicketDetailDTO, error) {
	m.query = query
	return m.result, m.err
}

type mockLister struct {
	mine []*dto.TicketDTO
	all  []*dto.TicketDTO
	err  error
}

func (m *mockLister) ListMine(ctx context.Context, ownerID string) ([]*dto.TicketDTO, error) {
	return m.mine, m.err
}

func (m *mockLister) ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.TicketDTO, error) {
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can list all tickets")
	}
	return m.all, m.err
}

type mockBoard struct {
	filter aggregation.TicketBoardFilter
	result *aggregation.TicketBoardResult
	err    error
}

func (m *mockBoard) TicketBoard(ctx context.Context, actorRole uservo.Role, filter aggregation.TicketBoardFilter) (*aggregation.TicketBoardResult, error) {
	m.filter = filter
	return m.result, m.err
}

type fixture struct {
	create *mockCreateUC
	status *mockChangeStatusUC
	reply  *mockAddReplyUC
	get    *mockGetUC
	lister *mockLister
	board  *mockBoard
	h      *Handler
}

func newFixture() *fixture {
	f := &fixture{
		create: &mockCreateUC{},
		status: &mockChangeStatusUC{},
		reply:  &mockAddReplyUC{},
		get:    &mockGetUC{},
		lister: &mockLister{},
		board:  &mockBoard{},
	}
	f.h = NewHandler(f.create, f.status, f.reply, f.get, f.lister, f.board, testutil.NewMockLogger())
	return f
}

// =====================================================================
// Tests
// =====================================================================

func TestHandler_Create(t *testing.T) {
	f := newFixture()
	f.create.result = &dto.TicketDTO{ID: "doc-1", Number: "TKT-1700000000000-AB12C", Status: "open", Priority: "medium"}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", CreateTicketRequest{
		Subject:     "Cannot log in",
		Description: "The login button does nothing",
	})
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p-1", f.create.cmd.OwnerID)
	assert.Empty(t, f.create.cmd.Priority)
	assert.Contains(t, w.Body.String(), `"ticketId":"TKT-1700000000000-AB12C"`)
}

func TestHandler_Create_MissingSubject(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", CreateTicketRequest{Description: "The login button does nothing"})
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.create.cmd.OwnerID)
}

func TestHandler_ListAll_ForbiddenForCustomer(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets", nil)
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.ListAll(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Board(t *testing.T) {
	f := newFixture()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tk, err := domainticket.ReconstructTicket("doc-1", "TKT-1", "p-1", "a@x.com", "Cannot log in", "The login button does nothing",
		ticketvo.PriorityHigh, "in progress", nil, created, created, nil)
	require.NoError(t, err)
	f.board.result = &aggregation.TicketBoardResult{
		Tickets:   []*domainticket.Ticket{tk},
		Counts:    aggregation.TicketCounts{InProgress: 1},
		Customers: []string{"a@x.com"},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/board", nil)
	testutil.SetQueryParams(c, map[string]string{"status": "in progress", "priority": "high"})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.Board(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ticketvo.StatusInProgress, f.board.filter.Status)
	assert.Equal(t, "high", f.board.filter.Priority)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out BoardResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out.Tickets, 1)
	assert.Equal(t, "in-progress", out.Tickets[0].Status)
	assert.Equal(t, 1, out.Counts.InProgress)
}

func TestHandler_Board_AllStatuses(t *testing.T) {
	f := newFixture()
	f.board.result = &aggregation.TicketBoardResult{}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/board", nil)
	testutil.SetQueryParams(c, map[string]string{"status": "all"})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.Board(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.board.filter.Status)
}

func TestHandler_Board_InvalidStatus(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/board", nil)
	testutil.SetQueryParams(c, map[string]string{"status": "closed"})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.Board(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Get(t *testing.T) {
	f := newFixture()
	f.get.result = &dto.TicketDetailDTO{
		Ticket:  &dto.TicketDTO{ID: "doc-1", Number: "TKT-1"},
		Replies: []*dto.ReplyDTO{{ID: "r-1", TicketID: "doc-1", Message: "On it"}},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/TKT-1", nil)
	testutil.SetURLParam(c, "id", "TKT-1")
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "TKT-1", f.get.query.Reference)
	assert.Equal(t, uservo.RoleCustomer, f.get.query.ActorRole)
}

func TestHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", errors.NewNotFoundError("ticket not found"), http.StatusNotFound},
		{"not owner", errors.NewAccessError("ticket"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.get.err = tt.err

			c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/x", nil)
			testutil.SetURLParam(c, "id", "x")
			testutil.SetAuthContext(c, "p-2", "other@example.com", "customer")

			f.h.Get(c)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHandler_ListReplies(t *testing.T) {
	f := newFixture()
	f.get.result = &dto.TicketDetailDTO{
		Ticket:  &dto.TicketDTO{ID: "doc-1"},
		Replies: []*dto.ReplyDTO{{ID: "r-1"}, {ID: "r-2"}},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/doc-1/replies", nil)
	testutil.SetURLParam(c, "id", "doc-1")
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.ListReplies(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var replies []dto.ReplyDTO
	require.NoError(t, json.Unmarshal(resp.Data, &replies))
	assert.Len(t, replies, 2)
}

func TestHandler_ChangeStatus(t *testing.T) {
	f := newFixture()
	f.status.result = &dto.TicketDTO{ID: "doc-1", Status: "resolved"}

	c, w := testutil.NewTestContext(http.MethodPatch, "/api/tickets/doc-1/status", ChangeStatusRequest{Status: "resolved"})
	testutil.SetURLParam(c, "id", "doc-1")
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.ChangeStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doc-1", f.status.cmd.TicketID)
	assert.Equal(t, "resolved", f.status.cmd.NewStatus)
	assert.Equal(t, uservo.RoleAdmin, f.status.cmd.ActorRole)
}

func TestHandler_ChangeStatus_MissingStatus(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodPatch, "/api/tickets/doc-1/status", ChangeStatusRequest{})
	testutil.SetURLParam(c, "id", "doc-1")
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.ChangeStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.status.cmd.TicketID)
}

func TestHandler_AddReply(t *testing.T) {
	f := newFixture()
	f.reply.result = &dto.ReplyDTO{ID: "r-1", TicketID: "doc-1", Message: "Fixed"}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets/doc-1/replies", AddReplyRequest{Message: "Fixed"})
	testutil.SetURLParam(c, "id", "doc-1")
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.AddReply(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "staff@example.com", f.reply.cmd.ActorEmail)
	assert.Equal(t, "Fixed", f.reply.cmd.Message)
}

func TestHandler_AddReply_ForbiddenForCustomer(t *testing.T) {
	f := newFixture()
	f.reply.err = errors.NewForbiddenError("only staff can reply to tickets")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets/doc-1/replies", AddReplyRequest{Message: "Hello"})
	testutil.SetURLParam(c, "id", "doc-1")
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.AddReply(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
