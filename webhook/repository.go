package webhook

import (
	"context"
	"time"
)

/* Delivery is the archived trail of one accepted event
 * The retry queue itself is in-memory; the archive is what survives for
 * operators after the event leaves the pipeline
 */
type Delivery struct {
	ID        string
	EventName string
	Status    Status
	RequestID string
	Outcome   Outcome
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 */

// Reader provides read operations for archived deliveries
type Reader interface {
	Get(ctx context.Context, id string) (Delivery, error)
	/* ListByEvent returns the most recent deliveries for an event name
	 * Used by operators chasing a misbehaving vendor integration
	 */
	ListByEvent(ctx context.Context, eventName string, limit int) ([]Delivery, error)
	CountByOutcome(ctx context.Context) (map[string]int64, error)
}

// Writer provides write operations for archived deliveries
type Writer interface {
	Store(ctx context.Context, d Delivery) (string, error)
	/* UpdateOutcome records the latest attempt for a delivery
	 * lastError is empty on success
	 */
	UpdateOutcome(ctx context.Context, id string, outcome Outcome, attempts int, lastError string) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
