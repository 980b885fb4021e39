package metrics

import (
	"context"
	"time"
)

// Snapshot represents the current state of the webhook pipeline.
type Snapshot struct {
	// QueueDepth is the number of events awaiting redelivery
	QueueDepth int64 `json:"queue_depth"`

	// RegisteredHandlers is the number of event names with a bound handler
	RegisteredHandlers int64 `json:"registered_handlers"`

	// DrainInProgress is true while a redelivery pass is running
	DrainInProgress bool `json:"drain_in_progress"`

	// OutcomeCounts maps delivery outcome name to count of archived deliveries
	OutcomeCounts map[string]int64 `json:"outcome_counts"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the pipeline.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Snapshot, error)

	// GetQueueDepth returns the number of events awaiting redelivery
	GetQueueDepth(ctx context.Context) (int64, error)

	// GetOutcomeCounts returns the count of archived deliveries by outcome
	GetOutcomeCounts(ctx context.Context) (map[string]int64, error)
}
