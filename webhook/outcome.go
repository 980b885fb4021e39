package webhook

import "fmt"

/* Outcome represents the delivery lifecycle of an accepted event
 * Follows the lifecycle: Received -> Delivered / Retrying -> Delivered/Dropped
 */
type Outcome int

const (
	Received Outcome = iota + 1
	Delivered
	Retrying
	Dropped
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Received:
		return "received"
	case Delivered:
		return "delivered"
	case Retrying:
		return "retrying"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// NewOutcome creates an Outcome from a string
func NewOutcome(str string) Outcome {
	switch str {
	case "received":
		return Received
	case "delivered":
		return Delivered
	case "retrying":
		return Retrying
	case "dropped":
		return Dropped
	default:
		return Received
	}
}

// Validate checks if the outcome is valid
func (o Outcome) Validate() error {
	if o < Received || o > Dropped {
		return fmt.Errorf("invalid outcome: %d", o)
	}
	return nil
}

// IsFinal returns true if the outcome is a terminal state
func (o Outcome) IsFinal() bool {
	return o == Delivered || o == Dropped
}
