package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

// InteractionViews computes the merged interaction history.
type InteractionViews interface {
	Interactions(ctx context.Context, q aggregation.InteractionsQuery) (*aggregation.InteractionsResult, error)
}

type InteractionHandler struct {
	views  InteractionViews
	logger logger.Interface
}

func NewInteractionHandler(views InteractionViews, logger logger.Interface) *InteractionHandler {
	return &InteractionHandler{views: views, logger: logger}
}

// InteractionFilterQuery are the filter parameters shared by the history
// endpoint and the live interactions view. Dates are YYYY-MM-DD calendar
// days in the business timezone.
type InteractionFilterQuery struct {
	Type      string `form:"type" json:"type" validate:"omitempty,oneof=feedback ticket"`
	Email     string `form:"email" json:"email"`
	Category  string `form:"category" json:"category"`
	Rating    int    `form:"rating" json:"rating" validate:"gte=0,lte=5"`
	Status    string `form:"status" json:"status"`
	StartDate string `form:"startDate" json:"startDate"`
	EndDate   string `form:"endDate" json:"endDate"`
}

// ToFilter validates the date range and builds the aggregation filter.
func (q InteractionFilterQuery) ToFilter() (aggregation.Filter, error) {
	r, err := aggregation.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return aggregation.Filter{}, errors.NewValidationError("invalid date range", err.Error())
	}
	return aggregation.Filter{
		Type:     aggregation.InteractionType(q.Type),
		Email:    q.Email,
		Category: q.Category,
		Rating:   q.Rating,
		Status:   q.Status,
		Range:    r,
	}, nil
}

type InteractionsResponse struct {
	Items         []aggregation.Interaction  `json:"items"`
	Total         int                        `json:"total"`
	Customers     []string                   `json:"customers"`
	AdminStats    *aggregation.AdminStats    `json:"adminStats,omitempty"`
	CustomerStats *aggregation.CustomerStats `json:"customerStats,omitempty"`
}

// List handles GET /api/interactions
func (h *InteractionHandler) List(c *gin.Context) {
	var q InteractionFilterQuery
	if err := utils.BindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.views.Interactions(c.Request.Context(), aggregation.InteractionsQuery{
		ActorID:   middleware.UserID(c),
		ActorRole: middleware.UserRole(c),
		Filter:    filter,
	})
	if err != nil {
		h.logger.Errorw("failed to load interactions", "user_id", middleware.UserID(c), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", InteractionsResponse{
		Items:         result.Items,
		Total:         result.Total,
		Customers:     result.Customers,
		AdminStats:    result.AdminStats,
		CustomerStats: result.CustomerStats,
	})
}
