package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/craftline/webhook-gateway/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Uses Redis Hashes for delivery records, per-event lists for recent
 * history and plain counters per outcome
 */

const (
	hashPrefix    = "delivery"         // Hash naming: delivery:{delivery_id}
	eventPrefix   = "deliveries:event" // List naming: deliveries:event:{event_name}
	counterPrefix = "deliveries:count" // Counter naming: deliveries:count:{outcome}

	// recentLimit bounds the per-event history list
	recentLimit = 500
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// Store creates the archive record for a freshly accepted event
func (r *Repository) Store(ctx context.Context, d webhook.Delivery) (string, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, d.ID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, map[string]interface{}{
		"id":         d.ID,
		"event_name": d.EventName,
		"status":     d.Status.String(),
		"request_id": d.RequestID,
		"outcome":    d.Outcome.String(),
		"attempts":   d.Attempts,
		"last_error": d.LastError,
		"created_at": d.CreatedAt.Unix(),
		"updated_at": d.UpdatedAt.Unix(),
	})

	eventKey := fmt.Sprintf("%s:%s", eventPrefix, d.EventName)
	pipe.LPush(ctx, eventKey, d.ID)
	pipe.LTrim(ctx, eventKey, 0, recentLimit-1)

	pipe.Incr(ctx, counterKey(d.Outcome))

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing delivery: %w", err)
	}
	return d.ID, nil
}

// UpdateOutcome records the latest attempt for a delivery
func (r *Repository) UpdateOutcome(ctx context.Context, id string, outcome webhook.Outcome, attempts int, lastError string) error {
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validating outcome: %w", err)
	}

	hashKey := fmt.Sprintf("%s:%s", hashPrefix, id)
	previous, err := r.client.HGet(ctx, hashKey, "outcome").Result()
	if err == redis.Nil {
		return fmt.Errorf("delivery not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("reading delivery outcome: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, map[string]interface{}{
		"outcome":    outcome.String(),
		"attempts":   attempts,
		"last_error": lastError,
		"updated_at": time.Now().Unix(),
	})
	if previous != outcome.String() {
		pipe.Decr(ctx, counterKey(webhook.NewOutcome(previous)))
		pipe.Incr(ctx, counterKey(outcome))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating delivery outcome: %w", err)
	}
	return nil
}

// Get retrieves a delivery by ID from its Redis hash
func (r *Repository) Get(ctx context.Context, id string) (webhook.Delivery, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, id)

	data, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if len(data) == 0 {
		return webhook.Delivery{}, fmt.Errorf("delivery not found: %s", id)
	}

	return parseDelivery(data)
}

// ListByEvent returns the most recent deliveries for an event name
func (r *Repository) ListByEvent(ctx context.Context, eventName string, limit int) ([]webhook.Delivery, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}

	eventKey := fmt.Sprintf("%s:%s", eventPrefix, eventName)
	ids, err := r.client.LRange(ctx, eventKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}

	deliveries := make([]webhook.Delivery, 0, len(ids))
	for _, id := range ids {
		d, err := r.Get(ctx, id)
		if err != nil {
			// hash may have expired out from under the list entry
			continue
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// CountByOutcome returns the number of deliveries per outcome
func (r *Repository) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	outcomes := []webhook.Outcome{webhook.Received, webhook.Delivered, webhook.Retrying, webhook.Dropped}

	keys := make([]string, len(outcomes))
	for i, o := range outcomes {
		keys[i] = counterKey(o)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading outcome counters: %w", err)
	}

	counts := make(map[string]int64, len(outcomes))
	for i, o := range outcomes {
		var n int64
		if raw, ok := values[i].(string); ok {
			n, _ = strconv.ParseInt(raw, 10, 64)
		}
		counts[o.String()] = n
	}
	return counts, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("closing Redis connection: %w", err)
	}
	return nil
}

func counterKey(o webhook.Outcome) string {
	return fmt.Sprintf("%s:%s", counterPrefix, o.String())
}

func parseDelivery(data map[string]string) (webhook.Delivery, error) {
	attempts, err := strconv.Atoi(data["attempts"])
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("parsing attempts: %w", err)
	}
	createdAt, err := strconv.ParseInt(data["created_at"], 10, 64)
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("parsing created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(data["updated_at"], 10, 64)
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("parsing updated_at: %w", err)
	}

	return webhook.Delivery{
		ID:        data["id"],
		EventName: data["event_name"],
		Status:    webhook.Status(data["status"]),
		RequestID: data["request_id"],
		Outcome:   webhook.NewOutcome(data["outcome"]),
		Attempts:  attempts,
		LastError: data["last_error"],
		CreatedAt: time.Unix(createdAt, 0),
		UpdatedAt: time.Unix(updatedAt, 0),
	}, nil
}
