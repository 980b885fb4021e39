package webhook

import "time"

// Result is the outcome of one processing attempt for an event
type Result struct {
	Success bool
	// Error carries the failure reason; never swallowed
	Error string
	// Permanent marks failures that retrying cannot fix (schema violations)
	Permanent bool
	// Queued is true when the event was handed to the retry queue
	Queued      bool
	ProcessedAt time.Time
}

func success(at time.Time) Result {
	return Result{Success: true, ProcessedAt: at}
}

func permanentFailure(reason string) Result {
	return Result{Error: reason, Permanent: true}
}
