package v1

import (
	"net/http"

	"github.com/flexprice/ticketing/internal/api/dto"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingHandler serves the stateless calendar calculators
type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{service: service, log: log}
}

// bindJSON reports a malformed body as a validation error
func bindJSON(c *gin.Context, log *logger.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Debugw("failed to bind JSON", "path", c.FullPath(), "error", err)
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return false
	}
	return true
}

// @Summary Calculate payment date
// @Description Compute the next payment date of a would-be subscription
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.CalculatePaymentDateRequest true "Payment date request"
// @Success 200 {object} dto.PaymentDateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /billing/payment-date [post]
func (h *BillingHandler) CalculatePaymentDate(c *gin.Context) {
	var req dto.CalculatePaymentDateRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.service.CalculatePaymentDate(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Calculate service period
// @Description Compute the interval paid by a ticket due on a payment date
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ServicePeriodRequest true "Service period request"
// @Success 200 {object} dto.ServicePeriodResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /billing/service-period [post]
func (h *BillingHandler) CalculateServicePeriod(c *gin.Context) {
	var req dto.ServicePeriodRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.service.CalculateServicePeriod(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Next service period
// @Description Compute the service period that follows the given one
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.NextServicePeriodRequest true "Current service period"
// @Success 200 {object} dto.ServicePeriodResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /billing/service-period/next [post]
func (h *BillingHandler) NextServicePeriod(c *gin.Context) {
	var req dto.NextServicePeriodRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.service.NextServicePeriod(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Service period contains
// @Description Check whether a date lies within a service period, both ends included
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ServicePeriodContainsRequest true "Date and period"
// @Success 200 {object} dto.ServicePeriodContainsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /billing/service-period/contains [post]
func (h *BillingHandler) ServicePeriodContains(c *gin.Context) {
	var req dto.ServicePeriodContainsRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.service.ServicePeriodContains(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview proportional ticket
// @Description Evaluate the first ticket of a would-be subscription without storing anything
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ProportionalTicketPreviewRequest true "Preview request"
// @Success 200 {object} dto.ProportionalTicketResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /billing/proportional-ticket/preview [post]
func (h *BillingHandler) PreviewProportionalTicket(c *gin.Context) {
	var req dto.ProportionalTicketPreviewRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.service.PreviewProportionalTicket(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
