// Package feedback provides HTTP handlers for customer feedback.
package feedback

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/feedback/dto"
	"github.com/frankincense-labs/cx-management/internal/application/feedback/usecases"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

type Lister interface {
	ListMine(ctx context.Context, ownerID string) ([]*dto.FeedbackDTO, error)
	ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.FeedbackDTO, error)
}

type ReviewBoard interface {
	FeedbackReview(ctx context.Context, actorRole uservo.Role, filter aggregation.FeedbackReviewFilter) (*aggregation.FeedbackReviewResult, error)
}

type Handler struct {
	submitUC usecases.SubmitFeedbackExecutor
	reviewUC usecases.ReviewFeedbackExecutor
	lister   Lister
	board    ReviewBoard
	logger   logger.Interface
}

func NewHandler(
	submitUC usecases.SubmitFeedbackExecutor,
	reviewUC usecases.ReviewFeedbackExecutor,
	lister Lister,
	board ReviewBoard,
	logger logger.Interface,
) *Handler {
	return &Handler{
		submitUC: submitUC,
		reviewUC: reviewUC,
		lister:   lister,
		board:    board,
		logger:   logger,
	}
}

// Submit handles POST /api/feedback
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.submitUC.Execute(c.Request.Context(), usecases.SubmitFeedbackCommand{
		OwnerID:     middleware.UserID(c),
		OwnerEmail:  middleware.UserEmail(c),
		Rating:      req.Rating,
		Comment:     req.Comment,
		Category:    req.Category,
		Attachments: handlers.ToAttachments(req.Attachments),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Feedback submitted successfully")
}

// ListMine handles GET /api/feedback/mine
func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.lister.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// ListAll handles GET /api/feedback
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.lister.ListAll(c.Request.Context(), middleware.UserRole(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// ReviewBoard handles GET /api/feedback/review
func (h *Handler) ReviewBoard(c *gin.Context) {
	var q ReviewBoardQuery
	if err := utils.BindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.board.FeedbackReview(c.Request.Context(), middleware.UserRole(c), filter)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", ReviewBoardResponse{
		Feedback:   dto.ToFeedbackDTOs(result.Feedback),
		Customers:  result.Customers,
		Categories: result.Categories,
	})
}

// MarkReviewed handles POST /api/feedback/:id/review
func (h *Handler) MarkReviewed(c *gin.Context) {
	feedbackID := c.Param("id")
	if err := utils.ValidateID(feedbackID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.reviewUC.Execute(c.Request.Context(), usecases.ReviewFeedbackCommand{
		FeedbackID: feedbackID,
		ActorID:    middleware.UserID(c),
		ActorEmail: middleware.UserEmail(c),
		ActorRole:  middleware.UserRole(c),
	})
	if err != nil {
		h.logger.Warnw("failed to mark feedback reviewed",
			"feedback_id", feedbackID,
			"user_id", middleware.UserID(c),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback marked as reviewed", result)
}
