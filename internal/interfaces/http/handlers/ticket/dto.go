package ticket

import (
	"github.com/frankincense-labs/cx-management/internal/application/aggregation"
	"github.com/frankincense-labs/cx-management/internal/application/ticket/dto"
	ticketvo "github.com/frankincense-labs/cx-management/internal/domain/ticket/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/handlers"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

type CreateTicketRequest struct {
	Subject     string                       `json:"subject" validate:"required,max=200"`
	Description string                       `json:"description" validate:"required,max=10000"`
	Priority    string                       `json:"priority" validate:"omitempty,max=16"`
	Attachments []handlers.AttachmentRequest `json:"attachments" validate:"omitempty,max=10,dive"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AddReplyRequest struct {
	Message string `json:"message" validate:"required,max=10000"`
}

// BoardQuery filters the staff ticket board. Dates are YYYY-MM-DD.
type BoardQuery struct {
	Status    string `form:"status"`
	Email     string `form:"email"`
	Priority  string `form:"priority" validate:"omitempty,oneof=low medium high"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (q BoardQuery) toFilter() (aggregation.TicketBoardFilter, error) {
	var status ticketvo.TicketStatus
	if q.Status != "" && q.Status != "all" {
		s, err := ticketvo.NewTicketStatus(q.Status)
		if err != nil {
			return aggregation.TicketBoardFilter{}, errors.NewValidationError("invalid status filter", q.Status)
		}
		status = s
	}
	r, err := aggregation.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return aggregation.TicketBoardFilter{}, errors.NewValidationError("invalid date range", err.Error())
	}
	return aggregation.TicketBoardFilter{
		Status:   status,
		Email:    q.Email,
		Priority: q.Priority,
		Range:    r,
	}, nil
}

type BoardResponse struct {
	Tickets   []*dto.TicketDTO         `json:"tickets"`
	Counts    aggregation.TicketCounts `json:"counts"`
	Customers []string                 `json:"customers"`
}
