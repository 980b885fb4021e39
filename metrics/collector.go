package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/craftline/webhook-gateway/webhook"
)

// StatsSource exposes the pipeline's introspection counters
type StatsSource interface {
	Stats() webhook.Stats
}

/* PipelineCollector gathers metrics from the live pipeline and the
 * delivery archive
 */
type PipelineCollector struct {
	stats      StatsSource
	deliveries webhook.Reader
}

// NewPipelineCollector creates a collector over the given sources
func NewPipelineCollector(stats StatsSource, deliveries webhook.Reader) *PipelineCollector {
	return &PipelineCollector{
		stats:      stats,
		deliveries: deliveries,
	}
}

// Collect gathers current metrics from the system
func (c *PipelineCollector) Collect(ctx context.Context) (Snapshot, error) {
	stats := c.stats.Stats()

	counts, err := c.GetOutcomeCounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		QueueDepth:         int64(stats.QueueDepth),
		RegisteredHandlers: int64(stats.RegisteredHandlers),
		DrainInProgress:    stats.DrainInProgress,
		OutcomeCounts:      counts,
		Timestamp:          time.Now(),
	}, nil
}

// GetQueueDepth returns the number of events awaiting redelivery
func (c *PipelineCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	return int64(c.stats.Stats().QueueDepth), nil
}

// GetOutcomeCounts returns the count of archived deliveries by outcome
func (c *PipelineCollector) GetOutcomeCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := c.deliveries.CountByOutcome(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting deliveries by outcome: %w", err)
	}
	return counts, nil
}
