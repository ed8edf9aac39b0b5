// Package ticket provides HTTP handlers for support tickets and their
// replies.
package ticket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/usecases"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

type Lister interface {
	ListMine(ctx context.Context, ownerID string) ([]*dto.TicketDTO, error)
	ListAll(ctx context.Context, actorRole uservo.Role) ([]*dto.TicketDTO, error)
}

type Board interface {
	TicketBoard(ctx context.Context, actorRole uservo.Role, filter aggregation.TicketBoardFilter) (*aggregation.TicketBoardResult, error)
}

type Handler struct {
	createUC       usecases.CreateTicketExecutor
	changeStatusUC usecases.ChangeStatusExecutor
	addReplyUC     usecases.AddReplyExecutor
	getUC          usecases.GetTicketExecutor
	lister         Lister
	board          Board
	logger         logger.Interface
}

func NewHandler(
	createUC usecases.CreateTicketExecutor,
	changeStatusUC usecases.ChangeStatusExecutor,
	addReplyUC usecases.AddReplyExecutor,
	getUC usecases.GetTicketExecutor,
	lister Lister,
	board Board,
	logger logger.Interface,
) *Handler {
	return &Handler{
		createUC:       createUC,
		changeStatusUC: changeStatusUC,
		addReplyUC:     addReplyUC,
		getUC:          getUC,
		lister:         lister,
		board:          board,
		logger:         logger,
	}
}

// Create handles POST /api/tickets
func (h *Handler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateTicketCommand{
		OwnerID:     middleware.UserID(c),
		OwnerEmail:  middleware.UserEmail(c),
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Attachments: handlers.ToAttachments(req.Attachments),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Ticket created successfully")
}

// ListMine handles GET /api/tickets/mine
func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.lister.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// ListAll handles GET /api/tickets
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.lister.ListAll(c.Request.Context(), middleware.UserRole(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// Board handles GET /api/tickets/board
func (h *Handler) Board(c *gin.Context) {
	var q BoardQuery
	if err := utils.BindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.board.TicketBoard(c.Request.Context(), middleware.UserRole(c), filter)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", BoardResponse{
		Tickets:   dto.ToTicketDTOs(result.Tickets),
		Counts:    result.Counts,
		Customers: result.Customers,
	})
}

// Get handles GET /api/tickets/:id. The id may be the human ticket number
// or the storage id.
func (h *Handler) Get(c *gin.Context) {
	detail, ok := h.detail(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

// ListReplies handles GET /api/tickets/:id/replies
func (h *Handler) ListReplies(c *gin.Context) {
	detail, ok := h.detail(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", detail.Replies)
}

// ChangeStatus handles PATCH /api/tickets/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	ticketID := c.Param("id")
	if err := utils.ValidateID(ticketID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangeStatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.changeStatusUC.Execute(c.Request.Context(), usecases.ChangeStatusCommand{
		TicketID:  ticketID,
		NewStatus: req.Status,
		ActorID:   middleware.UserID(c),
		ActorRole: middleware.UserRole(c),
	})
	if err != nil {
		h.logger.Warnw("failed to change ticket status",
			"ticket_id", ticketID,
			"status", req.Status,
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ticket status updated", result)
}

// AddReply handles POST /api/tickets/:id/replies
func (h *Handler) AddReply(c *gin.Context) {
	ticketID := c.Param("id")
	if err := utils.ValidateID(ticketID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req AddReplyRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.addReplyUC.Execute(c.Request.Context(), usecases.AddReplyCommand{
		TicketID:   ticketID,
		Message:    req.Message,
		ActorID:    middleware.UserID(c),
		ActorEmail: middleware.UserEmail(c),
		ActorRole:  middleware.UserRole(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Reply added successfully")
}

func (h *Handler) detail(c *gin.Context) (*dto.TicketDetailDTO, bool) {
	reference := c.Param("id")
	if err := utils.ValidateID(reference); err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}

	detail, err := h.getUC.Execute(c.Request.Context(), usecases.GetTicketQuery{
		Reference: reference,
		ActorID:   middleware.UserID(c),
		ActorRole: middleware.UserRole(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return nil, false
	}
	return detail, true
}
