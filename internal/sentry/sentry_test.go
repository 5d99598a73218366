package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestDisabledServiceIsNoop(t *testing.T) {
	svc := NewSentryService(config.GetDefaultConfig(), logger.NewNopLogger())
	ctx := context.Background()

	span, spanCtx := svc.StartDBSpan(ctx, "postgres.transaction", nil)
	assert.Nil(t, span)
	assert.Equal(t, ctx, spanCtx)

	tx, txCtx := svc.StartTransaction(ctx, "sweep.payment_dates")
	assert.Nil(t, tx)
	assert.Equal(t, ctx, txCtx)

	assert.NotPanics(t, func() {
		svc.CaptureException(errors.New("boom"))
		svc.CaptureSweepFailure("payment_dates", "subs_1", errors.New("boom"))
	})

	var nilSvc *Service
	assert.NotPanics(t, func() { nilSvc.CaptureException(errors.New("boom")) })
}
