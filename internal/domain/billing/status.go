package billing

import (
	"time"

	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/types"
)

// DeriveStatus computes the business status of sub on today.
//
// An end date in the past means expired and an end date today or later means ending.
// Without an end date the subscription is active unless it was cancelled, in which case
// policy decides between keeping it cancelled and reporting it as expired.
func DeriveStatus(sub *subscription.Subscription, today time.Time, policy types.StatusPolicy) types.SubscriptionStatus {
	if sub.EndDate != nil {
		if types.CompareDates(*sub.EndDate, today) < 0 {
			return types.SubscriptionStatusExpired
		}
		return types.SubscriptionStatusEnding
	}

	if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
		if policy == types.StatusPolicyExpireCancelled {
			return types.SubscriptionStatusExpired
		}
		return types.SubscriptionStatusCancelled
	}

	return types.SubscriptionStatusActive
}
