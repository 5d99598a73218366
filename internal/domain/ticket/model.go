package ticket

import (
	"fmt"
	"time"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
)

// Ticket is an invoice owed by a client for the service interval
// [ServiceStart, ServiceEnd], both days inclusive.
type Ticket struct {
	ID             string             `db:"id" json:"id"`
	SubscriptionID string             `db:"subscription_id" json:"subscription_id"`
	ClientID       string             `db:"client_id" json:"client_id"`
	DueDate        time.Time          `db:"due_date" json:"due_date"`
	Amount         decimal.Decimal    `db:"amount" json:"amount"`
	TicketStatus   types.TicketStatus `db:"ticket_status" json:"ticket_status"`
	GeneratedDate  time.Time          `db:"generated_date" json:"generated_date"`
	IsManual       bool               `db:"is_manual" json:"is_manual"`
	ServiceStart   time.Time          `db:"service_start" json:"service_start"`
	ServiceEnd     time.Time          `db:"service_end" json:"service_end"`
	Description    string             `db:"description" json:"description"`
	IdempotencyKey string             `db:"idempotency_key" json:"idempotency_key"`

	types.BaseModel
}

// IdempotencyKey derives the unique key of the ticket covering [start, end] for a subscription.
// Two tickets for the same subscription and interval always collide on it.
func IdempotencyKey(subscriptionID string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s", subscriptionID, types.FormatDate(start), types.FormatDate(end))
}

// Covers reports whether the ticket covers exactly [start, end] by calendar day
func (t *Ticket) Covers(start, end time.Time) bool {
	return types.SameDay(t.ServiceStart, start) && types.SameDay(t.ServiceEnd, end)
}
