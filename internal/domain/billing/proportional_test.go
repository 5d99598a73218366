package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyConfig(start, boundary time.Time, price string) ProportionalTicketConfig {
	return ProportionalTicketConfig{
		SubscriptionID: "subs_1",
		ClientID:       "cli_1",
		StartDate:      start,
		Boundary:       NewSettlementBoundary(boundary),
		ServicePrice:   decimal.RequireFromString(price),
		Frequency:      types.FrequencyMonthly,
		PaymentType:    types.PaymentTypeAdvance,
		ServiceName:    "Hosting",
	}
}

func TestEvaluateProportionalTicket_Prorated(t *testing.T) {
	ctx := context.Background()
	today := day(2025, time.April, 20)
	cfg := monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "100")

	out, err := EvaluateProportionalTicket(ctx, cfg, today, newRecordingLookup())
	require.NoError(t, err)
	require.True(t, out.Emits())

	assert.Equal(t, DecisionProrated, out.Decision)
	assert.Equal(t, 15, out.DaysUsed)
	assert.Equal(t, 30, out.TotalDays)

	tk := out.Ticket
	assert.True(t, tk.Amount.Equal(decimal.RequireFromString("50.00")), tk.Amount.String())
	assert.Equal(t, day(2025, time.April, 16), tk.ServiceStart)
	assert.Equal(t, day(2025, time.April, 30), tk.ServiceEnd)
	assert.Equal(t, today, tk.DueDate)
	assert.Equal(t, today, tk.GeneratedDate)
	assert.Equal(t, types.TicketStatusPending, tk.TicketStatus)
	assert.False(t, tk.IsManual)
	assert.Equal(t, "Hosting - Período (16/04/2025 - 30/04/2025) - 15/30 días", tk.Description)
	assert.Equal(t, "subs_1:2025-04-16:2025-04-30", tk.IdempotencyKey)
	assert.Equal(t, "cli_1", tk.ClientID)

	require.NotNil(t, out.PaymentDate)
	assert.Equal(t, day(2025, time.May, 1), *out.PaymentDate)
}

func TestEvaluateProportionalTicket_PriceRules(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		boundary  time.Time
		price     string
		wantPrice string
	}{
		{name: "thirds round to cents", start: day(2025, time.April, 21), boundary: day(2025, time.May, 1), price: "100", wantPrice: "33.33"},
		{name: "fraction is capped at the full price", start: day(2025, time.April, 16), boundary: day(2025, time.June, 1), price: "100", wantPrice: "100"},
		{name: "full month shortcut keeps the exact price", start: day(2025, time.January, 1), boundary: day(2025, time.January, 31), price: "99.99", wantPrice: "99.99"},
		{name: "boundary in the next month bills the whole month", start: day(2025, time.January, 1), boundary: day(2025, time.February, 1), price: "31", wantPrice: "31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EvaluateProportionalTicket(context.Background(), monthlyConfig(tt.start, tt.boundary, tt.price), day(2025, time.June, 30), newRecordingLookup())
			require.NoError(t, err)
			require.True(t, out.Emits())
			assert.True(t, out.Ticket.Amount.Equal(decimal.RequireFromString(tt.wantPrice)), "got %s", out.Ticket.Amount)
		})
	}
}

func TestEvaluateProportionalTicket_FutureStart(t *testing.T) {
	lookup := newRecordingLookup()
	today := day(2025, time.April, 15)

	for _, paymentType := range []types.PaymentType{types.PaymentTypeAdvance, types.PaymentTypeArrears, types.PaymentTypeAnniversary} {
		cfg := monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "100")
		cfg.PaymentType = paymentType

		out, err := EvaluateProportionalTicket(context.Background(), cfg, today, lookup)
		require.NoError(t, err)
		assert.Equal(t, DecisionFutureStart, out.Decision)
		assert.False(t, out.Emits())
	}
	assert.Zero(t, lookup.calls)
}

func TestEvaluateProportionalTicket_Inconsistent(t *testing.T) {
	cfg := monthlyConfig(day(2025, time.April, 10), day(2025, time.April, 1), "100")

	out, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.April, 20), newRecordingLookup())
	require.NoError(t, err)
	assert.Equal(t, DecisionInconsistent, out.Decision)
	assert.Nil(t, out.PaymentDate)
}

func TestEvaluateProportionalTicket_FullPeriod(t *testing.T) {
	start := day(2025, time.March, 1)
	cfg := monthlyConfig(start, start, "100")

	out, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.March, 5), newRecordingLookup())
	require.NoError(t, err)
	require.True(t, out.Emits())

	assert.Equal(t, DecisionFullPeriod, out.Decision)
	assert.True(t, out.Ticket.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, start, out.Ticket.ServiceStart)
	assert.Equal(t, day(2025, time.March, 31), out.Ticket.ServiceEnd)
	assert.Equal(t, "Hosting - Período (01/03/2025 - 31/03/2025) - 31/31 días", out.Ticket.Description)
	assert.Equal(t, start, *out.PaymentDate)
}

func TestEvaluateProportionalTicket_Idempotent(t *testing.T) {
	ctx := context.Background()
	lookup := newRecordingLookup()
	today := day(2025, time.April, 20)
	cfg := monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "100")

	first, err := EvaluateProportionalTicket(ctx, cfg, today, lookup)
	require.NoError(t, err)
	require.True(t, first.Emits())
	lookup.record(first.Ticket)

	second, err := EvaluateProportionalTicket(ctx, cfg, today, lookup)
	require.NoError(t, err)
	assert.Equal(t, DecisionAlreadyExists, second.Decision)
	assert.False(t, second.Emits())
	assert.Nil(t, second.PaymentDate)
}

func TestEvaluateProportionalTicket_Deterministic(t *testing.T) {
	cfg := monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "100")
	today := day(2025, time.April, 20)

	a, err := EvaluateProportionalTicket(context.Background(), cfg, today, newRecordingLookup())
	require.NoError(t, err)
	b, err := EvaluateProportionalTicket(context.Background(), cfg, today, newRecordingLookup())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEvaluateProportionalTicket_ZeroPrice(t *testing.T) {
	cfg := monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "0")

	out, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.April, 20), newRecordingLookup())
	require.NoError(t, err)
	assert.Equal(t, DecisionZeroPrice, out.Decision)
	assert.False(t, out.Emits())
}

func TestEvaluateProportionalTicket_LookupError(t *testing.T) {
	lookup := newRecordingLookup()
	lookup.err = errors.New("store down")

	_, err := EvaluateProportionalTicket(context.Background(), monthlyConfig(day(2025, time.April, 16), day(2025, time.May, 1), "100"), day(2025, time.April, 20), lookup)
	assert.EqualError(t, err, "store down")
}

func TestEvaluateProportionalTicket_RequiresBoundary(t *testing.T) {
	cfg := monthlyConfig(day(2025, time.April, 16), time.Time{}, "100")
	cfg.Boundary = SettlementBoundary{}

	_, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.April, 20), newRecordingLookup())
	assert.Error(t, err)
}

func TestEvaluateProportionalTicket_Anniversary(t *testing.T) {
	tests := []struct {
		name            string
		start           time.Time
		wantEnd         time.Time
		wantPaymentDate time.Time
	}{
		{name: "regular year", start: day(2024, time.May, 10), wantEnd: day(2025, time.May, 9), wantPaymentDate: day(2025, time.May, 10)},
		{name: "from leap day", start: day(2024, time.February, 29), wantEnd: day(2025, time.February, 27), wantPaymentDate: day(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today := day(2025, time.June, 1)
			cfg := ProportionalTicketConfig{
				SubscriptionID: "subs_anniv",
				StartDate:      tt.start,
				ServicePrice:   decimal.RequireFromString("480.50"),
				Frequency:      types.FrequencyMonthly,
				PaymentType:    types.PaymentTypeAnniversary,
				ServiceName:    "Dominio",
			}

			out, err := EvaluateProportionalTicket(context.Background(), cfg, today, newRecordingLookup())
			require.NoError(t, err)
			require.True(t, out.Emits())

			assert.Equal(t, DecisionAnniversary, out.Decision)
			assert.True(t, out.Ticket.Amount.Equal(cfg.ServicePrice))
			assert.Equal(t, tt.start, out.Ticket.DueDate)
			assert.Equal(t, today, out.Ticket.GeneratedDate)
			assert.Equal(t, tt.start, out.Ticket.ServiceStart)
			assert.Equal(t, tt.wantEnd, out.Ticket.ServiceEnd)
			assert.Equal(t, tt.wantPaymentDate, *out.PaymentDate)
		})
	}
}

func TestEvaluateProportionalTicket_AnniversaryAlreadyBilled(t *testing.T) {
	lookup := newRecordingLookup()
	cfg := ProportionalTicketConfig{
		SubscriptionID: "subs_anniv",
		StartDate:      day(2024, time.May, 10),
		ServicePrice:   decimal.NewFromInt(10),
		Frequency:      types.FrequencyAnnual,
		PaymentType:    types.PaymentTypeAnniversary,
	}

	first, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.January, 1), lookup)
	require.NoError(t, err)
	lookup.record(first.Ticket)

	second, err := EvaluateProportionalTicket(context.Background(), cfg, day(2025, time.January, 1), lookup)
	require.NoError(t, err)
	assert.Equal(t, DecisionAlreadyExists, second.Decision)
}

func TestTotalDaysInPeriod(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		frequency types.Frequency
		want      int
	}{
		{name: "monthly april", start: day(2025, time.April, 16), frequency: types.FrequencyMonthly, want: 30},
		{name: "monthly leap february", start: day(2024, time.February, 10), frequency: types.FrequencyMonthly, want: 29},
		{name: "quarterly", start: day(2025, time.January, 15), frequency: types.FrequencyQuarterly, want: 90},
		{name: "annual across leap day", start: day(2023, time.March, 5), frequency: types.FrequencyAnnual, want: 366},
		{name: "annual calendar year", start: day(2024, time.January, 5), frequency: types.FrequencyAnnual, want: 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalDaysInPeriod(tt.start, tt.frequency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProratePrice(t *testing.T) {
	price := decimal.NewFromInt(100)
	assert.True(t, ProratePrice(price, 15, 30).Equal(decimal.NewFromInt(50)))
	assert.True(t, ProratePrice(price, 31, 30).Equal(price))
	assert.True(t, ProratePrice(price, 0, 30).IsZero())
	assert.True(t, ProratePrice(decimal.RequireFromString("59.90"), 7, 31).Equal(decimal.RequireFromString("13.53")))
}
