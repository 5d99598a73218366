// Package billing holds the calendar rules that decide when a subscription is billed,
// which service interval a ticket pays for and what a partial first period costs.
// Nothing in here performs I/O or reads the wall clock; "today" is always an argument.
package billing

import (
	"time"

	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/samber/lo"
)

// CalculatePaymentDate computes the next payment date of sub billed for svc.
//
// The start date is advanced one period and snapped to the service renovation day.
// Arrears subscriptions are then shifted one more raw period without a second snap.
// ok is false when the start date or the frequency is missing, which callers must skip.
func CalculatePaymentDate(sub *subscription.Subscription, svc *catalog.Service) (date time.Time, ok bool, err error) {
	if !sub.HasStartDate() || svc == nil || svc.Frequency == "" {
		return time.Time{}, false, nil
	}
	return nextPaymentDate(sub.StartDate, sub.PaymentType, svc.Frequency, svc.Renovation)
}

func nextPaymentDate(start time.Time, paymentType types.PaymentType, frequency types.Frequency, renovation types.RenewalDayPolicy) (time.Time, bool, error) {
	next, err := types.AddPeriod(start, frequency)
	if err != nil {
		return time.Time{}, false, err
	}

	// a service without a renovation policy keeps the raw period date
	if renovation != "" {
		if next, err = types.Snap(next, renovation); err != nil {
			return time.Time{}, false, err
		}
	}

	if paymentType == types.PaymentTypeArrears {
		if next, err = types.AddPeriod(next, frequency); err != nil {
			return time.Time{}, false, err
		}
	}

	return next, true, nil
}

// NeedsRecalculation reports whether the stored payment date of sub can't be trusted on today
func NeedsRecalculation(sub *subscription.Subscription, today time.Time) bool {
	return sub.PaymentDate == nil || types.CompareDates(*sub.PaymentDate, today) <= 0
}

// SubscriptionsNeedingRecalculation keeps the subscriptions whose payment date is unset or on/before today
func SubscriptionsNeedingRecalculation(subs []*subscription.Subscription, today time.Time) []*subscription.Subscription {
	return lo.Filter(subs, func(sub *subscription.Subscription, _ int) bool {
		return NeedsRecalculation(sub, today)
	})
}

// Recalculation pairs a subscription with its freshly computed payment date.
// NewPaymentDate is nil when the service is unknown or the inputs are incomplete.
type Recalculation struct {
	Subscription   *subscription.Subscription
	NewPaymentDate *time.Time
	Err            error
}

// RecalculatePaymentDates computes the payment date of every subscription against its service.
// Services are matched by ID. Failures are reported per entry and never stop the batch.
func RecalculatePaymentDates(subs []*subscription.Subscription, services []*catalog.Service) []Recalculation {
	byID := lo.KeyBy(services, func(svc *catalog.Service) string {
		return svc.ID
	})

	return lo.Map(subs, func(sub *subscription.Subscription, _ int) Recalculation {
		result := Recalculation{Subscription: sub}
		svc, found := byID[sub.ServiceID]
		if !found {
			return result
		}

		date, ok, err := CalculatePaymentDate(sub, svc)
		if err != nil {
			result.Err = err
			return result
		}
		if ok {
			result.NewPaymentDate = &date
		}
		return result
	})
}

// SettlementBoundary is the second future payment date of a subscription.
// A proportional ticket settles everything from the start date up to the day before it.
// Passing the first payment date instead skips a whole period, hence the dedicated type.
type SettlementBoundary struct {
	date time.Time
}

// NewSettlementBoundary wraps a date that the caller has already advanced twice
func NewSettlementBoundary(date time.Time) SettlementBoundary {
	return SettlementBoundary{date: date}
}

// Date returns the boundary day
func (b SettlementBoundary) Date() time.Time {
	return b.date
}

// IsZero reports whether the boundary was never set
func (b SettlementBoundary) IsZero() bool {
	return b.date.IsZero()
}

// SettlementBoundaryFor computes the first payment date of sub and then the payment
// date that follows it, returning the latter. ok is false on incomplete inputs.
func SettlementBoundaryFor(sub *subscription.Subscription, svc *catalog.Service) (SettlementBoundary, bool, error) {
	first, ok, err := CalculatePaymentDate(sub, svc)
	if err != nil || !ok {
		return SettlementBoundary{}, ok, err
	}

	second, ok, err := nextPaymentDate(first, sub.PaymentType, svc.Frequency, svc.Renovation)
	if err != nil || !ok {
		return SettlementBoundary{}, ok, err
	}
	return NewSettlementBoundary(second), true, nil
}
