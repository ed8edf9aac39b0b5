package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/application/feedback/usecases"
	domainfeedback "github.com/frankincense-labs/cx-management/internal/domain/feedback"
	fbvo "github.com/frankincense-labs/cx-management/internal/domain/feedback/valueobjects"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/testutil"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockSubmitUC struct {
	cmd    usecases.SubmitFeedbackCommand
	result *dto.FeedbackDTO
	err    error
}

func (m *mockSubmitUC) Execute(ctx context.Context, cmd usecases.SubmitFeedbackCommand) (*dto.FeedbackDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockReviewUC struct {
	cmd    usecases.ReviewFeedbackCommand
	result *dto.FeedbackDTO
	err    error
}

func (m *mockReviewUC) Execute(ctx context.Context, cmd usecases.ReviewFeedbackCommand) (*dto.FeedbackDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockLister struct {
	mine    []*dto.FeedbackDTO
	all     []*dto.FeedbackDTO
	err     error
	ownerID string
	role    uservo.Role
}

func (m *mockLister) ListMine(ctx context.Context, ownerID string) ([]*dto.FeedbackDTO, error) {
	m.ownerID = ownerID
	return m.mine, m.err
}

func (m *mockLister) ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.FeedbackDTO, error) {
	m.role = actorRole
	if !actorRole.IsAdmin() {
		return nil, errors.NewForbiddenError("only staff can list all feedback")
	}
	return m.all, m.err
}

type mockBoard struct {
	filter aggregation.FeedbackReviewFilter
	result *aggregation.FeedbackReviewResult
	err    error
}

func (m *mockBoard) FeedbackReview(ctx context.Context, actorRole uservo.Role, filter aggregation.FeedbackReviewFilter) (*aggregation.FeedbackReviewResult, error) {
	m.filter = filter
	return m.result, m.err
}

type fixture struct {
	submit *mockSubmitUC
	review *mockReviewUC
	lister *mockLister
	board  *mockBoard
	h      *Handler
}

func newFixture() *fixture {
	f := &fixture{
		submit: &mockSubmitUC{},
		review: &mockReviewUC{},
		lister: &mockLister{},
		board:  &mockBoard{},
	}
	f.h = NewHandler(f.submit, f.review, f.lister, f.board, testutil.NewMockLogger())
	return f
}

// =====================================================================
// Tests
// =====================================================================

func TestHandler_Submit(t *testing.T) {
	f := newFixture()
	f.submit.result = &dto.FeedbackDTO{ID: "fb-1", Rating: 5, Status: "submitted"}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/feedback", SubmitFeedbackRequest{
		Rating:   5,
		Comment:  "Great support experience",
		Category: "support",
		Attachments: []handlers.AttachmentRequest{
			{URL: "/files/feedback/1_abc.png", Name: "shot.png", Size: 10, Type: "image/png"},
		},
	})
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p-1", f.submit.cmd.OwnerID)
	assert.Equal(t, "cust@example.com", f.submit.cmd.OwnerEmail)
	require.Len(t, f.submit.cmd.Attachments, 1)
	assert.Equal(t, "shot.png", f.submit.cmd.Attachments[0].Name)
}

func TestHandler_Submit_InvalidRating(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/feedback", map[string]any{"rating": 6, "comment": "long enough comment"})
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.submit.cmd.OwnerID)
}

func TestHandler_Submit_UseCaseValidation(t *testing.T) {
	f := newFixture()
	f.submit.err = errors.NewValidationError("comment must be at least 10 characters")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/feedback", SubmitFeedbackRequest{Rating: 3, Comment: "short"})
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "comment must be at least 10 characters", resp.Error.Message)
}

func TestHandler_ListMine(t *testing.T) {
	f := newFixture()
	f.lister.mine = []*dto.FeedbackDTO{{ID: "fb-2"}, {ID: "fb-1"}}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/feedback/mine", nil)
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.ListMine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-1", f.lister.ownerID)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var items []dto.FeedbackDTO
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 2)
}

func TestHandler_ListAll_ForbiddenForCustomer(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/feedback", nil)
	testutil.SetAuthContext(c, "p-1", "cust@example.com", "customer")

	f.h.ListAll(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, uservo.RoleCustomer, f.lister.role)
}

func TestHandler_ReviewBoard(t *testing.T) {
	f := newFixture()
	item, err := domainfeedback.ReconstructFeedback("fb-1", "p-1", "a@x.com", 4, "comment long enough", "ui",
		fbvo.StatusSubmitted, nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	f.board.result = &aggregation.FeedbackReviewResult{
		Feedback:   []*domainfeedback.Feedback{item},
		Customers:  []string{"a@x.com"},
		Categories: []string{"ui"},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/feedback/review", nil)
	testutil.SetQueryParams(c, map[string]string{"rating": "4", "status": "submitted"})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.ReviewBoard(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, f.board.filter.Rating)
	assert.Equal(t, "submitted", f.board.filter.Status)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out ReviewBoardResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out.Feedback, 1)
	assert.Equal(t, "fb-1", out.Feedback[0].ID)
	assert.Equal(t, []string{"ui"}, out.Categories)
}

func TestHandler_ReviewBoard_InvalidStatus(t *testing.T) {
	f := newFixture()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/feedback/review", nil)
	testutil.SetQueryParams(c, map[string]string{"status": "archived"})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.ReviewBoard(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MarkReviewed(t *testing.T) {
	reviewedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	f := newFixture()
	f.review.result = &dto.FeedbackDTO{ID: "fb-1", Status: "reviewed", ReviewedAt: &reviewedAt}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/feedback/fb-1/review", nil)
	testutil.SetURLParam(c, "id", "fb-1")
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.MarkReviewed(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fb-1", f.review.cmd.FeedbackID)
	assert.Equal(t, uservo.RoleAdmin, f.review.cmd.ActorRole)
	assert.Equal(t, "staff@example.com", f.review.cmd.ActorEmail)
}

func TestHandler_MarkReviewed_NotFound(t *testing.T) {
	f := newFixture()
	f.review.err = errors.NewNotFoundError("feedback not found")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/feedback/missing/review", nil)
	testutil.SetURLParam(c, "id", "missing")
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	f.h.MarkReviewed(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
