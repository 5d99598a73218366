package billing

import (
	"fmt"
	"time"

	"github.com/flexprice/ticketing/internal/types"
)

// DescribeServicePeriod renders "Hosting - Mensual anticipado (01/03/2025 - 30/04/2025)"
func DescribeServicePeriod(serviceName string, frequency types.Frequency, paymentType types.PaymentType, start, end time.Time) (string, error) {
	label, err := frequency.Label()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - %s %s (%s - %s)",
		serviceName,
		label,
		paymentType.Label(),
		types.FormatDisplayDate(start),
		types.FormatDisplayDate(end),
	), nil
}

// DescribeProportionalPeriod renders "Hosting - Período (16/04/2025 - 30/04/2025) - 15/30 días"
func DescribeProportionalPeriod(serviceName string, start, end time.Time, daysUsed, totalDays int) string {
	return fmt.Sprintf("%s - Período (%s - %s) - %d/%d días",
		serviceName,
		types.FormatDisplayDate(start),
		types.FormatDisplayDate(end),
		daysUsed,
		totalDays,
	)
}
