package webhook

import (
	"fmt"
	"regexp"
	"time"
)

/* Event represents a received vendor callback in the system
 * Uses value semantics as it represents data, not behavior
 */
type Event struct {
	Name       string
	Status     Status
	Timestamp  string
	RequestID  string
	ExtraInfo  string
	Metadata   map[string]any
	DeliveryID string
	// RetryAttempts is owned by the retry queue; it is bumped on each
	// re-enqueue and never exceeds the configured maximum
	RetryAttempts int
}

// eventNamePattern validates event names: lowercase namespace.action
var eventNamePattern = regexp.MustCompile(`^[a-z]+\.[a-z_]+$`)

// ValidateName checks an event name against the namespace.action shape
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("event name is required")
	}
	if !eventNamePattern.MatchString(name) {
		return fmt.Errorf("event name must match namespace.action: %s", name)
	}
	return nil
}

// Validate checks the structural correctness of the event.
// Each check short-circuits with a specific reason; a failing event is
// permanently rejected and must never be retried.
func (e Event) Validate() error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if err := e.Status.Validate(); err != nil {
		return err
	}
	if e.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := e.OccurredAt(); err != nil {
		return fmt.Errorf("timestamp must be a valid ISO-8601 instant: %s", e.Timestamp)
	}
	return nil
}

// OccurredAt parses the event timestamp
func (e Event) OccurredAt() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		// try without nano precision
		ts, err = time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
		}
	}
	return ts, nil
}
