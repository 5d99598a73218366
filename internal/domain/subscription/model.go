package subscription

import (
	"time"

	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
)

// Subscription links a client to a catalog service from StartDate onwards.
// PaymentDate is the stored next billing date, nil until first computed.
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	ClientID           string                   `db:"client_id" json:"client_id"`
	ServiceID          string                   `db:"service_id" json:"service_id"`
	StartDate          time.Time                `db:"start_date" json:"start_date"`
	EndDate            *time.Time               `db:"end_date" json:"end_date,omitempty"`
	PaymentType        types.PaymentType        `db:"payment_type" json:"payment_type"`
	PaymentDate        *time.Time               `db:"payment_date" json:"payment_date,omitempty"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	types.BaseModel
}

// HasStartDate reports whether the subscription carries a usable start date
func (s *Subscription) HasStartDate() bool {
	return s != nil && !s.StartDate.IsZero()
}

func (s *Subscription) Validate() error {
	if s.ServiceID == "" {
		return ierr.NewError("service_id is required").
			WithHint("A subscription must reference a service").
			Mark(ierr.ErrValidation)
	}
	if err := s.PaymentType.Validate(); err != nil {
		return err
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return ierr.NewError("end_date before start_date").
			WithHint("End date must be on or after the start date").
			WithReportableDetails(map[string]any{
				"start_date": types.FormatDate(s.StartDate),
				"end_date":   types.FormatDate(*s.EndDate),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
