package webhook

import "fmt"

/* Status is the vendor's status vocabulary for a callback event
 * The set is fixed; anything outside it fails schema validation
 */
type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusProcessing Status = "processing"
	StatusPending    Status = "pending"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
	StatusRefunded   Status = "refunded"
)

// Validate checks if the status is part of the vendor vocabulary
func (s Status) Validate() error {
	switch s {
	case StatusSuccess, StatusFailed, StatusProcessing, StatusPending,
		StatusCancelled, StatusExpired, StatusRefunded:
		return nil
	case "":
		return fmt.Errorf("status is required")
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsFinal returns true if the vendor considers the underlying job settled
func (s Status) IsFinal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}
