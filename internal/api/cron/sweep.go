package cron

import (
	"context"
	"net/http"

	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/gin-gonic/gin"
)

// SweepHandler exposes the periodic sweeps to an external scheduler
type SweepHandler struct {
	paymentDates service.PaymentDateService
	tickets      service.TicketService
	logger       *logger.Logger
}

func NewSweepHandler(
	paymentDates service.PaymentDateService,
	tickets service.TicketService,
	logger *logger.Logger,
) *SweepHandler {
	return &SweepHandler{
		paymentDates: paymentDates,
		tickets:      tickets,
		logger:       logger,
	}
}

// RefreshPaymentDates recomputes every stale payment date
func (h *SweepHandler) RefreshPaymentDates(c *gin.Context) {
	h.run(c, "payment date refresh", h.paymentDates.RefreshStale)
}

// BackfillProportionalTickets generates the proportional tickets still owed
func (h *SweepHandler) BackfillProportionalTickets(c *gin.Context) {
	h.run(c, "proportional ticket backfill", h.tickets.BackfillProportionalTickets)
}

// run reports per-subscription failures in the body, only an aborted sweep is an error
func (h *SweepHandler) run(c *gin.Context, name string, sweep func(ctx context.Context) (*dto.SweepResponse, error)) {
	h.logger.Infow("starting cron sweep", "sweep", name)

	resp, err := sweep(c.Request.Context())
	if err != nil {
		h.logger.Errorw("cron sweep failed",
			"sweep", name,
			"error", err)
		_ = c.Error(err)
		return
	}

	h.logger.Infow("completed cron sweep",
		"sweep", name,
		"total_candidates", resp.TotalCandidates,
		"failed", resp.Failed)
	c.JSON(http.StatusOK, resp)
}
