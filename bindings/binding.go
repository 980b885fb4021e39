package bindings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/craftline/webhook-gateway/webhook"
	"github.com/rs/zerolog"
)

/* Binding declares which internal service consumes one vendor event
 * Maps an event name to a target URL with delivery settings
 */
type Binding struct {
	Event          string
	TargetURL      string
	ExpectedStatus int // Expected HTTP status code: 200, 201, 202 or 204 (default: 200)
	Description    string
}

// Validate checks if the binding configuration is valid
func (b *Binding) Validate() error {
	if err := webhook.ValidateName(b.Event); err != nil {
		return fmt.Errorf("invalid event for binding: %w", err)
	}
	if b.TargetURL == "" {
		return fmt.Errorf("target_url cannot be empty for binding %s", b.Event)
	}
	switch b.ExpectedStatus {
	case 200, 201, 202, 204:
		return nil
	default:
		return fmt.Errorf("expected_status must be 200, 201, 202 or 204 for binding %s (got %d)", b.Event, b.ExpectedStatus)
	}
}

// forwardedEvent is the JSON body posted to the binding target
type forwardedEvent struct {
	Event     string         `json:"event"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
	ExtraInfo string         `json:"extra_info,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

/* NewHandler builds the business handler for a binding: it forwards the
 * validated event to the internal target service. The request carries the
 * dispatch context, so the dispatcher's deadline cancels the call for real
 * instead of abandoning it.
 */
func NewHandler(b *Binding, client *http.Client, logger zerolog.Logger) webhook.Handler {
	return func(ctx context.Context, e webhook.Event) error {
		body, err := json.Marshal(forwardedEvent{
			Event:     e.Name,
			Status:    e.Status.String(),
			Timestamp: e.Timestamp,
			RequestID: e.RequestID,
			ExtraInfo: e.ExtraInfo,
			Metadata:  e.Metadata,
		})
		if err != nil {
			return fmt.Errorf("marshaling event: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.TargetURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if e.RequestID != "" {
			req.Header.Set("X-Request-Id", e.RequestID)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("forwarding event to %s: %w", b.TargetURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != b.ExpectedStatus {
			return fmt.Errorf("unexpected status from %s: got %d, want %d", b.TargetURL, resp.StatusCode, b.ExpectedStatus)
		}

		logger.Debug().
			Str("event", e.Name).
			Str("target", b.TargetURL).
			Msg("event forwarded")
		return nil
	}
}
