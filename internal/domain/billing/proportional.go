package billing

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/domain/ticket"
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
)

// Decision names the branch the proportional ticket calculator settled on
type Decision string

const (
	// DecisionFutureStart means the subscription hasn't started yet
	DecisionFutureStart Decision = "future_start"
	// DecisionAnniversary emits a full year ticket from the start date
	DecisionAnniversary Decision = "anniversary"
	// DecisionInconsistent means the start date is after the settlement boundary
	DecisionInconsistent Decision = "inconsistent"
	// DecisionFutureFullPeriod means the start falls on the boundary and it is still ahead
	DecisionFutureFullPeriod Decision = "future_full_period"
	// DecisionFullPeriod emits an unprorated ticket for a period starting on the boundary
	DecisionFullPeriod Decision = "full_period"
	// DecisionProrated emits a ticket for the days between the start and the boundary
	DecisionProrated Decision = "prorated"
	DecisionNoDays   Decision = "no_days"
	// DecisionAlreadyExists means a ticket already covers the exact interval
	DecisionAlreadyExists Decision = "already_exists"
	DecisionZeroPrice     Decision = "zero_price"
	// DecisionMissingData means the subscription or its service lack the dates needed to evaluate
	DecisionMissingData Decision = "missing_data"
)

func (d Decision) String() string {
	return string(d)
}

// ExistingTicketLookup answers whether a ticket already covers [start, end] for a subscription.
// The calculator trusts its answer; the persistence unique key is the real backstop.
type ExistingTicketLookup interface {
	ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error)
}

// ProportionalTicketConfig is everything the calculator needs about one subscription
type ProportionalTicketConfig struct {
	SubscriptionID string
	ClientID       string
	StartDate      time.Time
	// Boundary must be the second future payment date, see SettlementBoundaryFor
	Boundary     SettlementBoundary
	ServicePrice decimal.Decimal
	Frequency    types.Frequency
	PaymentType  types.PaymentType
	ServiceName  string
}

func (c ProportionalTicketConfig) Validate() error {
	if c.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}
	if c.StartDate.IsZero() {
		return ierr.NewError("start_date is required").
			WithHint("Subscription start date is required").
			Mark(ierr.ErrValidation)
	}
	if c.PaymentType != types.PaymentTypeAnniversary && c.Boundary.IsZero() {
		return ierr.NewError("settlement boundary is required").
			WithHint("The second future payment date must be computed before proration").
			Mark(ierr.ErrValidation)
	}
	return c.Frequency.Validate()
}

// ProportionalOutcome is the result of one evaluation. Ticket and PaymentDate are set
// only for the emitting decisions; PaymentDate is the value the caller must persist.
type ProportionalOutcome struct {
	Decision    Decision
	Ticket      *ticket.Ticket
	PaymentDate *time.Time
	DaysUsed    int
	TotalDays   int
}

// Emits reports whether the outcome carries a ticket to persist
func (o ProportionalOutcome) Emits() bool {
	return o.Ticket != nil
}

// EvaluateProportionalTicket decides whether the gap between a subscription's start date and
// its settlement boundary owes a ticket, and builds it.
//
//	start > today                  -> future_start
//	anniversary                    -> full year ticket due on the start date
//	start > boundary               -> inconsistent
//	start == boundary > today      -> future_full_period
//	start == boundary <= today     -> full_period ticket
//	start < boundary               -> prorated ticket for [start, boundary-1]
//
// Emitting branches consult lookup first and return already_exists on a hit.
func EvaluateProportionalTicket(ctx context.Context, cfg ProportionalTicketConfig, today time.Time, lookup ExistingTicketLookup) (ProportionalOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return ProportionalOutcome{}, err
	}

	start := cfg.StartDate
	if types.CompareDates(start, today) > 0 {
		return ProportionalOutcome{Decision: DecisionFutureStart}, nil
	}

	if cfg.PaymentType == types.PaymentTypeAnniversary {
		return evaluateAnniversary(ctx, cfg, today, lookup)
	}

	boundary := cfg.Boundary.Date()
	switch cmp := types.CompareDates(start, boundary); {
	case cmp > 0:
		return ProportionalOutcome{Decision: DecisionInconsistent}, nil
	case cmp == 0:
		if types.CompareDates(boundary, today) > 0 {
			return ProportionalOutcome{Decision: DecisionFutureFullPeriod}, nil
		}
		return evaluateFullPeriod(ctx, cfg, today, lookup)
	default:
		return evaluateProrated(ctx, cfg, today, lookup)
	}
}

func evaluateProrated(ctx context.Context, cfg ProportionalTicketConfig, today time.Time, lookup ExistingTicketLookup) (ProportionalOutcome, error) {
	start := cfg.StartDate
	boundary := cfg.Boundary.Date()
	end := types.AddDays(boundary, -1)

	daysUsed := types.DaysBetweenInclusive(start, end)
	if daysUsed <= 0 {
		return ProportionalOutcome{Decision: DecisionNoDays}, nil
	}

	if exists, err := lookup.ExistsForPeriod(ctx, cfg.SubscriptionID, start, end); err != nil {
		return ProportionalOutcome{}, err
	} else if exists {
		return ProportionalOutcome{Decision: DecisionAlreadyExists}, nil
	}

	totalDays, err := TotalDaysInPeriod(start, cfg.Frequency)
	if err != nil {
		return ProportionalOutcome{}, err
	}

	price := cfg.ServicePrice
	if !(start.Day() == 1 && types.SameMonth(start, boundary)) {
		price = ProratePrice(cfg.ServicePrice, daysUsed, totalDays)
	}

	return emit(cfg, draft{
		decision:    DecisionProrated,
		start:       start,
		end:         end,
		due:         today,
		generated:   today,
		price:       price,
		daysUsed:    daysUsed,
		totalDays:   totalDays,
		paymentDate: boundary,
	}), nil
}

func evaluateFullPeriod(ctx context.Context, cfg ProportionalTicketConfig, today time.Time, lookup ExistingTicketLookup) (ProportionalOutcome, error) {
	start := cfg.StartDate
	next, err := types.AddPeriod(start, cfg.Frequency)
	if err != nil {
		return ProportionalOutcome{}, err
	}
	end := types.AddDays(next, -1)

	if exists, err := lookup.ExistsForPeriod(ctx, cfg.SubscriptionID, start, end); err != nil {
		return ProportionalOutcome{}, err
	} else if exists {
		return ProportionalOutcome{Decision: DecisionAlreadyExists}, nil
	}

	days := types.DaysBetweenInclusive(start, end)
	return emit(cfg, draft{
		decision:    DecisionFullPeriod,
		start:       start,
		end:         end,
		due:         today,
		generated:   today,
		price:       cfg.ServicePrice,
		daysUsed:    days,
		totalDays:   days,
		paymentDate: cfg.Boundary.Date(),
	}), nil
}

func evaluateAnniversary(ctx context.Context, cfg ProportionalTicketConfig, today time.Time, lookup ExistingTicketLookup) (ProportionalOutcome, error) {
	start := cfg.StartDate
	anniversary := types.AddClampedMonths(start, 1, 0)
	end := types.AddDays(anniversary, -1)

	if exists, err := lookup.ExistsForPeriod(ctx, cfg.SubscriptionID, start, end); err != nil {
		return ProportionalOutcome{}, err
	} else if exists {
		return ProportionalOutcome{Decision: DecisionAlreadyExists}, nil
	}

	days := types.DaysBetweenInclusive(start, end)
	return emit(cfg, draft{
		decision:    DecisionAnniversary,
		start:       start,
		end:         end,
		due:         start,
		generated:   today,
		price:       cfg.ServicePrice,
		daysUsed:    days,
		totalDays:   days,
		paymentDate: anniversary,
	}), nil
}

type draft struct {
	decision    Decision
	start, end  time.Time
	due         time.Time
	generated   time.Time
	price       decimal.Decimal
	daysUsed    int
	totalDays   int
	paymentDate time.Time
}

func emit(cfg ProportionalTicketConfig, d draft) ProportionalOutcome {
	// anniversary always bills the service price as is
	if !d.price.IsPositive() && d.decision != DecisionAnniversary {
		return ProportionalOutcome{Decision: DecisionZeroPrice, DaysUsed: d.daysUsed, TotalDays: d.totalDays}
	}

	paymentDate := d.paymentDate
	return ProportionalOutcome{
		Decision: d.decision,
		Ticket: &ticket.Ticket{
			SubscriptionID: cfg.SubscriptionID,
			ClientID:       cfg.ClientID,
			DueDate:        d.due,
			Amount:         d.price,
			TicketStatus:   types.TicketStatusPending,
			GeneratedDate:  d.generated,
			IsManual:       false,
			ServiceStart:   d.start,
			ServiceEnd:     d.end,
			Description:    DescribeProportionalPeriod(cfg.ServiceName, d.start, d.end, d.daysUsed, d.totalDays),
			IdempotencyKey: ticket.IdempotencyKey(cfg.SubscriptionID, d.start, d.end),
		},
		PaymentDate: &paymentDate,
		DaysUsed:    d.daysUsed,
		TotalDays:   d.totalDays,
	}
}

// TotalDaysInPeriod counts the calendar days of the billing period containing start.
// The period runs from the 1st of start's month through the last day of the month
// before start's month advanced by the frequency, so monthly from 2025-04-16 is 30.
func TotalDaysInPeriod(start time.Time, frequency types.Frequency) (int, error) {
	first := types.SnapToFirstDay(start)
	next, err := types.AddPeriod(first, frequency)
	if err != nil {
		return 0, err
	}
	return types.DaysBetweenInclusive(first, types.AddDays(next, -1)), nil
}

// ProratePrice charges price for daysUsed out of totalDays, capped at the full price
// and rounded to cents.
func ProratePrice(price decimal.Decimal, daysUsed, totalDays int) decimal.Decimal {
	if totalDays <= 0 || daysUsed >= totalDays {
		return price.Round(2)
	}
	if daysUsed <= 0 {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(daysUsed))).
		Div(decimal.NewFromInt(int64(totalDays))).
		Round(2)
}
