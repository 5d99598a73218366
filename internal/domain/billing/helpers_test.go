package billing

import (
	"context"
	"time"

	"github.com/flexprice/ticketing/internal/domain/ticket"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

// recordingLookup reports a hit for every interval it has been told about
type recordingLookup struct {
	keys  map[string]bool
	calls int
	err   error
}

func newRecordingLookup() *recordingLookup {
	return &recordingLookup{keys: map[string]bool{}}
}

func (l *recordingLookup) record(t *ticket.Ticket) {
	l.keys[ticket.IdempotencyKey(t.SubscriptionID, t.ServiceStart, t.ServiceEnd)] = true
}

func (l *recordingLookup) ExistsForPeriod(_ context.Context, subscriptionID string, start, end time.Time) (bool, error) {
	l.calls++
	if l.err != nil {
		return false, l.err
	}
	return l.keys[ticket.IdempotencyKey(subscriptionID, start, end)], nil
}
