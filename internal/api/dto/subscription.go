package dto

import (
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/types"
)

// PaymentDatePreviewResponse compares the stored payment date with a fresh computation
type PaymentDatePreviewResponse struct {
	SubscriptionID     string  `json:"subscription_id"`
	PaymentDate        *string `json:"payment_date"`
	StoredPaymentDate  *string `json:"stored_payment_date"`
	NeedsRecalculation bool    `json:"needs_recalculation"`
}

type SubscriptionStatusResponse struct {
	SubscriptionID string                   `json:"subscription_id"`
	Status         types.SubscriptionStatus `json:"status"`
	StoredStatus   types.SubscriptionStatus `json:"stored_status"`
	EndDate        *string                  `json:"end_date,omitempty"`
	Policy         types.StatusPolicy       `json:"policy"`
}

func NewSubscriptionStatusResponse(sub *subscription.Subscription, status types.SubscriptionStatus, policy types.StatusPolicy) *SubscriptionStatusResponse {
	return &SubscriptionStatusResponse{
		SubscriptionID: sub.ID,
		Status:         status,
		StoredStatus:   sub.SubscriptionStatus,
		EndDate:        formatOptionalDate(sub.EndDate),
		Policy:         policy,
	}
}
