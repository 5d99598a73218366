package billing

import (
	"time"

	"github.com/flexprice/ticketing/internal/types"
)

// ServicePeriod is the inclusive calendar interval a ticket pays for
type ServicePeriod struct {
	Start       time.Time
	End         time.Time
	Description string
}

// Contains reports whether date falls within the period, both ends included
func (p ServicePeriod) Contains(date time.Time) bool {
	return types.CompareDates(p.Start, date) <= 0 && types.CompareDates(date, p.End) <= 0
}

// Days is the inclusive length of the period
func (p ServicePeriod) Days() int {
	return types.DaysBetweenInclusive(p.Start, p.End)
}

// CalculateServicePeriod returns the interval paid by a ticket due on paymentDate.
//
// Advance tickets cover the upcoming period and arrears tickets the preceding one.
// Monthly advance runs from the 1st of the payment month to the last day of the
// following month. Anniversary subscriptions are treated as advance.
func CalculateServicePeriod(paymentDate time.Time, paymentType types.PaymentType, frequency types.Frequency, serviceName string) (ServicePeriod, error) {
	if err := frequency.Validate(); err != nil {
		return ServicePeriod{}, err
	}

	var start, end time.Time

	switch paymentType {
	case types.PaymentTypeArrears:
		end = paymentDate
		if frequency == types.FrequencyMonthly {
			start = types.SnapToFirstDay(paymentDate)
		} else {
			previous, err := types.SubtractPeriod(paymentDate, frequency)
			if err != nil {
				return ServicePeriod{}, err
			}
			start = types.AddDays(previous, 1)
		}
	default:
		if frequency == types.FrequencyMonthly {
			start = types.SnapToFirstDay(paymentDate)
			end = types.SnapToLastDay(types.AddClampedMonths(start, 0, 1))
		} else {
			next, err := types.AddPeriod(paymentDate, frequency)
			if err != nil {
				return ServicePeriod{}, err
			}
			start = paymentDate
			end = types.AddDays(next, -1)
		}
	}

	description, err := DescribeServicePeriod(serviceName, frequency, paymentType, start, end)
	if err != nil {
		return ServicePeriod{}, err
	}

	return ServicePeriod{
		Start:       start,
		End:         end,
		Description: description,
	}, nil
}

// IsDateInServicePeriod reports whether date lies within period, inclusive on both ends
func IsDateInServicePeriod(date time.Time, period ServicePeriod) bool {
	return period.Contains(date)
}

// NextServicePeriod returns the period that starts the day after current ends
func NextServicePeriod(current ServicePeriod, frequency types.Frequency, paymentType types.PaymentType, serviceName string) (ServicePeriod, error) {
	return CalculateServicePeriod(types.AddDays(current.End, 1), paymentType, frequency, serviceName)
}
