package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/ticketing/internal/api/dto"
	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// PaymentDateService keeps stored subscription payment dates trustworthy
type PaymentDateService interface {
	// Preview recomputes the payment date of a subscription without storing it
	Preview(ctx context.Context, subscriptionID string) (*dto.PaymentDatePreviewResponse, error)
	// RefreshStale recomputes and stores every active payment date that is unset or on/before today
	RefreshStale(ctx context.Context) (*dto.SweepResponse, error)
	// DeriveStatus reports the status a subscription should have today
	DeriveStatus(ctx context.Context, subscriptionID string) (*dto.SubscriptionStatusResponse, error)
}

type paymentDateService struct {
	ServiceParams
	services serviceLoader
}

func NewPaymentDateService(params ServiceParams) PaymentDateService {
	return &paymentDateService{
		ServiceParams: params,
		services:      serviceLoader{ServiceParams: params},
	}
}

func (s *paymentDateService) Preview(ctx context.Context, subscriptionID string) (*dto.PaymentDatePreviewResponse, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	svc, err := s.services.get(ctx, sub.ServiceID)
	if err != nil {
		return nil, err
	}

	date, ok, err := billing.CalculatePaymentDate(sub, svc)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentDatePreviewResponse{
		SubscriptionID:     sub.ID,
		StoredPaymentDate:  formatDatePtr(sub.PaymentDate),
		NeedsRecalculation: billing.NeedsRecalculation(sub, s.today()),
	}
	if ok {
		resp.PaymentDate = lo.ToPtr(types.FormatDate(date))
	}
	return resp, nil
}

func (s *paymentDateService) RefreshStale(ctx context.Context) (*dto.SweepResponse, error) {
	startedAt := time.Now()
	today := s.today()
	collector := newSweepCollector(metrics.SweepPaymentDateRefresh, s.now())

	s.Logger.Infow("starting payment date refresh",
		"today", types.FormatDate(today))

	err := forEachActiveBatch(ctx, s.ServiceParams, func(ctx context.Context, batch []*subscription.Subscription) error {
		stale := billing.SubscriptionsNeedingRecalculation(batch, today)
		collector.candidates(len(stale))
		if len(stale) == 0 {
			s.Logger.Debugw("no stale payment dates in batch", "batch_size", len(batch))
			return nil
		}

		services, err := s.services.list(ctx, lo.Map(stale, func(sub *subscription.Subscription, _ int) string {
			return sub.ServiceID
		}))
		if err != nil {
			// an unreadable catalog fails the batch, not the sweep
			for _, sub := range stale {
				collector.failed(sub.ID, err)
				s.Sentry.CaptureSweepFailure(metrics.SweepPaymentDateRefresh, sub.ID, err)
			}
			return nil
		}

		recalculations := lo.KeyBy(billing.RecalculatePaymentDates(stale, services), func(r billing.Recalculation) string {
			return r.Subscription.ID
		})
		runConcurrently(ctx, s.ServiceParams, stale, func(ctx context.Context, sub *subscription.Subscription) {
			s.applyRecalculation(ctx, recalculations[sub.ID], collector)
		})
		return nil
	})

	resp := collector.finish(s.now())
	s.Metrics.RecordSweep(metrics.SweepPaymentDateRefresh, startedAt, resp.TotalCandidates, resp.Failed)

	if err != nil {
		s.Logger.Errorw("payment date refresh aborted", "error", err)
		s.Sentry.CaptureException(err)
		return resp, err
	}

	s.Logger.Infow("completed payment date refresh",
		"total_candidates", resp.TotalCandidates,
		"updated", resp.Updated,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
		"duration", time.Since(startedAt))
	return resp, nil
}

func (s *paymentDateService) applyRecalculation(ctx context.Context, r billing.Recalculation, collector *sweepCollector) {
	sub := r.Subscription
	if r.Err != nil {
		s.Logger.Errorw("failed to recalculate payment date",
			"subscription_id", sub.ID,
			"error", r.Err)
		collector.failed(sub.ID, r.Err)
		s.Sentry.CaptureSweepFailure(metrics.SweepPaymentDateRefresh, sub.ID, r.Err)
		return
	}

	if r.NewPaymentDate == nil {
		s.Logger.Debugw("skipping subscription without a computable payment date",
			"subscription_id", sub.ID,
			"service_id", sub.ServiceID,
			"reason", billing.DecisionMissingData)
		collector.skipped(billing.DecisionMissingData)
		return
	}

	if err := s.persistPaymentDate(ctx, sub.ID, *r.NewPaymentDate); err != nil {
		s.Logger.Errorw("failed to store payment date",
			"subscription_id", sub.ID,
			"payment_date", types.FormatDate(*r.NewPaymentDate),
			"error", err)
		collector.failed(sub.ID, err)
		s.Sentry.CaptureSweepFailure(metrics.SweepPaymentDateRefresh, sub.ID, err)
		return
	}

	s.Logger.Debugw("refreshed payment date",
		"subscription_id", sub.ID,
		"previous", formatDatePtr(sub.PaymentDate),
		"payment_date", types.FormatDate(*r.NewPaymentDate))
	collector.updated("")
}

// persistPaymentDate retries transient write failures, bad input and missing rows fail at once
func (s *paymentDateService) persistPaymentDate(ctx context.Context, subscriptionID string, date time.Time) error {
	policy := backoff.NewExponentialBackOff()
	if s.Config.Billing.WriteRetryInterval > 0 {
		policy.InitialInterval = s.Config.Billing.WriteRetryInterval
	}
	retries := backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(s.Config.Billing.WriteRetries)),
		ctx,
	)

	return backoff.Retry(func() error {
		err := s.SubRepo.UpdatePaymentDate(ctx, subscriptionID, date)
		if err == nil {
			return nil
		}
		if ierr.IsValidation(err) || ierr.IsNotFound(err) || ierr.IsPermissionDenied(err) {
			return backoff.Permanent(err)
		}
		s.Logger.Debugw("retrying payment date write",
			"subscription_id", subscriptionID,
			"error", err)
		return err
	}, retries)
}

func (s *paymentDateService) DeriveStatus(ctx context.Context, subscriptionID string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	policy := s.Config.Billing.StatusPolicy
	status := billing.DeriveStatus(sub, s.today(), policy)
	return dto.NewSubscriptionStatusResponse(sub, status, policy), nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return lo.ToPtr(types.FormatDate(*t))
}
