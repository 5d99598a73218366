package types

import (
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/samber/lo"
)

// Frequency is the recurrence interval of a billed service
type Frequency string

const (
	FrequencyMonthly     Frequency = "monthly"
	FrequencyQuarterly   Frequency = "quarterly"
	FrequencyFourMonthly Frequency = "four_monthly"
	FrequencyBiannual    Frequency = "biannual"
	FrequencyAnnual      Frequency = "annual"
)

var frequencyMonths = map[Frequency]int{
	FrequencyMonthly:     1,
	FrequencyQuarterly:   3,
	FrequencyFourMonthly: 4,
	FrequencyBiannual:    6,
	FrequencyAnnual:      12,
}

// frequencyLabels are the labels printed on ticket and period descriptions
var frequencyLabels = map[Frequency]string{
	FrequencyMonthly:     "Mensual",
	FrequencyQuarterly:   "Trimestral",
	FrequencyFourMonthly: "Cuatrimestral",
	FrequencyBiannual:    "Semestral",
	FrequencyAnnual:      "Anual",
}

func (f Frequency) String() string {
	return string(f)
}

func (f Frequency) Validate() error {
	if _, ok := frequencyMonths[f]; !ok {
		return ierr.NewError("invalid frequency").
			WithHint("Frequency must be one of monthly, quarterly, four_monthly, biannual or annual").
			WithReportableDetails(map[string]any{
				"allowed_values": lo.Keys(frequencyMonths),
				"provided_value": f,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Months returns the length of one billing period in whole months.
// Annual counts as 12 even though date arithmetic advances it by one year.
func (f Frequency) Months() (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return frequencyMonths[f], nil
}

// Label returns the human readable frequency label
func (f Frequency) Label() (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	return frequencyLabels[f], nil
}

// RenewalDayPolicy decides which day of the month a billing period boundary snaps to
type RenewalDayPolicy string

const (
	RenewalFirstDay RenewalDayPolicy = "first_day"
	RenewalLastDay  RenewalDayPolicy = "last_day"
)

func (r RenewalDayPolicy) String() string {
	return string(r)
}

func (r RenewalDayPolicy) Validate() error {
	allowedValues := []RenewalDayPolicy{
		RenewalFirstDay,
		RenewalLastDay,
	}
	if !lo.Contains(allowedValues, r) {
		return ierr.NewError("invalid renewal day policy").
			WithHint("Renovation must be first_day or last_day").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": r,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentType decides whether a ticket is issued before or after the period it covers
type PaymentType string

const (
	// PaymentTypeAdvance bills before the service period
	PaymentTypeAdvance PaymentType = "advance"
	// PaymentTypeArrears bills after the service period
	PaymentTypeArrears PaymentType = "arrears"
	// PaymentTypeAnniversary always bills a full year from the start date anniversary
	PaymentTypeAnniversary PaymentType = "anniversary"
)

var paymentTypeLabels = map[PaymentType]string{
	PaymentTypeAdvance: "anticipado",
	PaymentTypeArrears: "vencido",
}

func (p PaymentType) String() string {
	return string(p)
}

func (p PaymentType) Validate() error {
	allowedValues := []PaymentType{
		PaymentTypeAdvance,
		PaymentTypeArrears,
		PaymentTypeAnniversary,
	}
	if !lo.Contains(allowedValues, p) {
		return ierr.NewError("invalid payment type").
			WithHint("Payment type must be advance, arrears or anniversary").
			WithReportableDetails(map[string]any{
				"allowed_values": allowedValues,
				"provided_value": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Label returns the payment type label used in period descriptions.
// Anniversary has no label of its own and is described as advance.
func (p PaymentType) Label() string {
	if label, ok := paymentTypeLabels[p]; ok {
		return label
	}
	return paymentTypeLabels[PaymentTypeAdvance]
}
