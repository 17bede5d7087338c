// Package messaging defines the outbound domain-event contract. Events are
// best-effort: publishing failures are logged by implementations and never
// fail the mutation that produced them.
package messaging

import (
	"context"
	"time"
)

// Event kinds emitted by the ledger service.
const (
	EventJobCreated          = "ledger.job.created"
	EventJobUpdated          = "ledger.job.updated"
	EventJobDeleted          = "ledger.job.deleted"
	EventExpenseCreated      = "ledger.expense.created"
	EventExpenseUpdated      = "ledger.expense.updated"
	EventExpenseDeleted      = "ledger.expense.deleted"
	EventNotificationCreated = "ledger.notification.created"
)

// Event is one domain event.
type Event struct {
	Kind       string         `json:"kind"`
	UserID     string         `json:"userId"`
	EntityID   string         `json:"entityId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// Publisher sends domain events to the configured bus.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NoopPublisher discards every event. Used when event publishing is disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(ctx context.Context, event Event) {}
