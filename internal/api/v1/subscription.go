package v1

import (
	"net/http"

	"github.com/flexprice/ticketing/internal/api/dto"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	paymentDates service.PaymentDateService
	tickets      service.TicketService
	log          *logger.Logger
}

func NewSubscriptionHandler(paymentDates service.PaymentDateService, tickets service.TicketService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		paymentDates: paymentDates,
		tickets:      tickets,
		log:          log,
	}
}

func subscriptionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		_ = c.Error(ierr.NewError("subscription ID is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation))
		return "", false
	}
	return id, true
}

// @Summary Preview payment date
// @Description Recompute the payment date of a subscription without storing it
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.PaymentDatePreviewResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/payment-date [get]
func (h *SubscriptionHandler) PreviewPaymentDate(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	resp, err := h.paymentDates.Preview(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Derive status
// @Description Report the status a subscription should have today
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/status [get]
func (h *SubscriptionHandler) DeriveStatus(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	resp, err := h.paymentDates.DeriveStatus(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Generate proportional ticket
// @Description Evaluate a subscription and store the proportional ticket it owes, if any
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 201 {object} dto.ProportionalTicketResponse
// @Success 200 {object} dto.ProportionalTicketResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/proportional-ticket [post]
func (h *SubscriptionHandler) GenerateProportionalTicket(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	resp, err := h.tickets.GenerateProportionalTicket(c.Request.Context(), id)
	if err != nil {
		h.log.Debugw("failed to generate proportional ticket",
			"subscription_id", id,
			"error", err)
		_ = c.Error(err)
		return
	}

	// 201 only when something was stored
	status := http.StatusOK
	if resp.Ticket != nil {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// @Summary List tickets
// @Description List the tickets of a subscription, newest service period first
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Param filter query dto.ListTicketsRequest false "Filter"
// @Success 200 {object} dto.ListTicketsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/tickets [get]
func (h *SubscriptionHandler) ListTickets(c *gin.Context) {
	id, ok := subscriptionID(c)
	if !ok {
		return
	}

	var req dto.ListTicketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.tickets.ListTickets(c.Request.Context(), id, req.ToFilter(id))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
