package types

// Status is a type for the status of a resource row in the Database.
// It tracks soft deletion and is independent of any business status.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

// SubscriptionStatus is the business status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusEnding    SubscriptionStatus = "ending"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// TicketStatus is the payment status of a ticket
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusPaid      TicketStatus = "paid"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) String() string {
	return string(s)
}

// StatusPolicy picks how a cancelled subscription without an end date is reported.
// The two values mirror the two status derivations that coexist in the legacy screens.
type StatusPolicy string

const (
	// StatusPolicyPreserveCancelled keeps cancelled subscriptions as cancelled
	StatusPolicyPreserveCancelled StatusPolicy = "preserve_cancelled"
	// StatusPolicyExpireCancelled reports cancelled subscriptions as expired
	StatusPolicyExpireCancelled StatusPolicy = "expire_cancelled"
)
