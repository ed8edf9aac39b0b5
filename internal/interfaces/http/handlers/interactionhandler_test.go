package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers/testutil"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

type mockInteractionViews struct {
	query  aggregation.InteractionsQuery
	result *aggregation.InteractionsResult
	err    error
}

func (m *mockInteractionViews) Interactions(ctx context.Context, q aggregation.InteractionsQuery) (*aggregation.InteractionsResult, error) {
	m.query = q
	return m.result, m.err
}

func TestInteractionHandler_List(t *testing.T) {
	require.NoError(t, biztime.Init("UTC"))
	views := &mockInteractionViews{result: &aggregation.InteractionsResult{
		Items: []aggregation.Interaction{{
			Type:   aggregation.TypeTicket,
			ID:     "t1",
			Date:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			Email:  "a@x.com",
			Status: "open",
			Number: "TKT-1",
		}},
		Total:      3,
		Customers:  []string{"a@x.com"},
		AdminStats: &aggregation.AdminStats{OpenTickets: 1},
	}}
	h := NewInteractionHandler(views, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/interactions", nil)
	testutil.SetQueryParams(c, map[string]string{
		"type":      "ticket",
		"email":     "a@x.com",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-01",
	})
	testutil.SetAuthContext(c, "staff-1", "staff@example.com", "admin")

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff-1", views.query.ActorID)
	assert.Equal(t, uservo.RoleAdmin, views.query.ActorRole)
	assert.Equal(t, aggregation.TypeTicket, views.query.Filter.Type)
	assert.Equal(t, "a@x.com", views.query.Filter.Email)
	assert.True(t, views.query.Filter.Range.Contains(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)))
	assert.False(t, views.query.Filter.Range.Contains(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Contains(t, out, "adminStats")
	assert.NotContains(t, out, "customerStats")
	assert.Contains(t, string(out["items"]), `"ticketId":"TKT-1"`)
}

func TestInteractionHandler_List_InvalidQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"bad date", map[string]string{"startDate": "03/01/2024"}},
		{"bad type", map[string]string{"type": "chat"}},
		{"rating out of range", map[string]string{"rating": "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := &mockInteractionViews{}
			h := NewInteractionHandler(views, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodGet, "/api/interactions", nil)
			testutil.SetQueryParams(c, tt.params)
			testutil.SetAuthContext(c, "p-1", "a@x.com", "customer")

			h.List(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, views.query.ActorID)
		})
	}
}
