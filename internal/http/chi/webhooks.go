package chi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/craftline/webhook-gateway/webhook"
	"github.com/craftline/webhook-gateway/webhook/signature"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* HTTP layer DTOs for the webhook API
 * Separate from domain entities to avoid leaking internal structure
 */

// Vendor callback headers
const (
	headerEvent     = "X-Webhook-Event"
	headerStatus    = "X-Webhook-Status"
	headerTimestamp = "X-Webhook-Timestamp"
	headerRequestID = "X-Request-Id"
	headerExtraInfo = "X-Webhook-Extra-Info"
	headerOrigin    = "X-Webhook-Origin"
)

// ackResponse acknowledges an accepted callback
type ackResponse struct {
	Received  bool   `json:"received"`
	Event     string `json:"event"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// errorResponse carries a rejection reason
type errorResponse struct {
	Error string `json:"error"`
}

// statsResponse combines pipeline introspection with archive counters
type statsResponse struct {
	webhook.Stats
	Outcomes map[string]int64 `json:"outcomes,omitempty"`
}

// postWebhook handles POST /v1/webhooks
func postWebhook(svc webhook.UseCase, secret string, origins webhook.OriginPolicy, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		defer r.Body.Close()

		eventName := r.Header.Get(headerEvent)
		status := r.Header.Get(headerStatus)
		if eventName == "" || status == "" {
			writeError(w, http.StatusBadRequest, "event and status headers are required")
			return
		}

		if err := signature.Verify(secret, body, r.Header.Get(signature.Header)); err != nil {
			logger.Warn().
				Str("event", eventName).
				Str("remote", r.RemoteAddr).
				Err(err).
				Msg("rejecting unauthenticated webhook")
			writeError(w, http.StatusUnauthorized, "invalid signature")
			return
		}

		origin := callerOrigin(r)
		if !origins.Allows(origin) {
			logger.Warn().
				Str("event", eventName).
				Str("origin", origin).
				Msg("rejecting webhook from disallowed origin")
			writeError(w, http.StatusForbidden, "origin not allowed")
			return
		}

		timestamp := r.Header.Get(headerTimestamp)
		if timestamp == "" {
			timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// the body is vendor passthrough context; a non-object body is fine
		var metadata map[string]any
		if len(body) > 0 {
			_ = json.Unmarshal(body, &metadata)
		}

		event := webhook.Event{
			Name:      eventName,
			Status:    webhook.Status(status),
			Timestamp: timestamp,
			RequestID: requestID,
			ExtraInfo: r.Header.Get(headerExtraInfo),
			Metadata:  metadata,
		}

		result := svc.Process(r.Context(), event)
		if result.Permanent {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		/* Handler failures after this point are the retry queue's problem,
		 * not the vendor's: the callback is acknowledged either way
		 */
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ackResponse{
			Received:  true,
			Event:     eventName,
			Status:    status,
			Timestamp: timestamp,
			RequestID: requestID,
		})
	})
}

// getStats handles GET /v1/stats
func getStats(svc webhook.UseCase, deliveries webhook.Reader, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{Stats: svc.Stats()}

		counts, err := deliveries.CountByOutcome(r.Context())
		if err != nil {
			// archive counters are optional in the stats view
			logger.Error().Err(err).Msg("reading outcome counters")
		} else {
			resp.Outcomes = counts
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// callerOrigin prefers the origin hint header, falling back to the peer host
func callerOrigin(r *http.Request) string {
	if origin := r.Header.Get(headerOrigin); origin != "" {
		return origin
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: reason})
}
