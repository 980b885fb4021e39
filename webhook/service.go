package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// Settings bounds handler execution and redelivery.
// Zero values fall back to the documented defaults.
type Settings struct {
	Timeout          time.Duration
	RetryMaxAttempts int
	RetryDelay       time.Duration
	DrainInterval    time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.RetryMaxAttempts <= 0 {
		s.RetryMaxAttempts = 3
	}
	if s.RetryDelay <= 0 {
		s.RetryDelay = 1 * time.Second
	}
	if s.DrainInterval <= 0 {
		s.DrainInterval = 5 * time.Second
	}
	return s
}

// Stats is a point-in-time view of the pipeline, safe to read concurrently
type Stats struct {
	RegisteredHandlers int      `json:"registered_handlers"`
	EventNames         []string `json:"event_names"`
	QueueDepth         int      `json:"queue_depth"`
	DrainInProgress    bool     `json:"drain_in_progress"`
}

// UseCase defines the business operations for webhook processing
type UseCase interface {
	Process(ctx context.Context, e Event) Result
	Stats() Stats
}

type Service struct {
	registry *Registry
	repo     Repository
	settings Settings
	logger   zerolog.Logger

	// mu guards queue; the single-flight flag alone is not enough, an
	// ingestion-time enqueue must not race a drain's snapshot-and-clear
	mu       sync.Mutex
	queue    []Event
	draining atomic.Bool

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewService creates a new webhook processing service with dependency injection
func NewService(registry *Registry, repo Repository, settings Settings, logger zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		settings: settings.withDefaults(),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Register binds a handler to an event name; re-registration overwrites
func (s *Service) Register(name string, h Handler) {
	s.registry.Register(name, h)
}

// Unregister removes the handler bound to an event name
func (s *Service) Unregister(name string) {
	s.registry.Unregister(name)
}

/* Process runs one delivery attempt for an ingested event:
 * schema validation, handler lookup, timed invocation.
 * Schema-invalid events fail permanently; handler failures are queued
 * for redelivery up to the retry budget.
 */
func (s *Service) Process(ctx context.Context, e Event) Result {
	if err := e.Validate(); err != nil {
		s.logger.Warn().
			Str("event", e.Name).
			Str("request_id", e.RequestID).
			Err(err).
			Msg("rejecting malformed event")
		return permanentFailure(err.Error())
	}

	if e.DeliveryID == "" {
		e.DeliveryID = uuid.New().String()
		now := time.Now()
		_, err := s.repo.Store(ctx, Delivery{
			ID:        e.DeliveryID,
			EventName: e.Name,
			Status:    e.Status,
			RequestID: e.RequestID,
			Outcome:   Received,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			// the archive is best-effort; processing must not depend on it
			s.logger.Error().Err(err).Str("delivery_id", e.DeliveryID).Msg("storing delivery record")
		}
	}

	return s.deliver(ctx, e)
}

// deliver dispatches the event and routes failures to the retry queue.
// It is the redelivery entry point for drain passes, bypassing
// re-validation: schema was already checked at ingestion.
func (s *Service) deliver(ctx context.Context, e Event) Result {
	if err := s.dispatch(ctx, e); err != nil {
		return s.failed(ctx, e, err)
	}

	now := time.Now()
	s.archive(ctx, e, Delivered, "")
	s.logger.Info().
		Str("event", e.Name).
		Str("request_id", e.RequestID).
		Int("attempts", e.RetryAttempts).
		Msg("event processed")
	return success(now)
}

// dispatch looks up the handler and races it against the configured timeout
func (s *Service) dispatch(ctx context.Context, e Event) error {
	h, ok := s.registry.Lookup(e.Name)
	if !ok {
		/* Unknown-but-well-formed events are acknowledged, not rejected.
		 * The vendor ships new event types without notice; dropping them
		 * as errors would poison the retry queue for nothing.
		 */
		s.logger.Info().Str("event", e.Name).Msg("no handler registered, acknowledging")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("handler panic: %v", r)
			}
		}()
		done <- h(ctx, e)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		// Cancellation is cooperative: the handler sees ctx.Done() and is
		// expected to bail out; the buffered channel lets a straggler
		// finish its send so the goroutine is reclaimed.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("handler timeout")
		}
		return fmt.Errorf("handler cancelled: %w", ctx.Err())
	}
}

// failed enqueues a retryable failure or drops it once the budget is spent
func (s *Service) failed(ctx context.Context, e Event, err error) Result {
	if e.RetryAttempts >= s.settings.RetryMaxAttempts {
		s.archive(ctx, e, Dropped, err.Error())
		s.logger.Error().
			Str("event", e.Name).
			Str("request_id", e.RequestID).
			Int("attempts", e.RetryAttempts).
			Err(err).
			Msg("retry attempts exhausted, dropping event")
		return Result{Error: err.Error()}
	}

	e.RetryAttempts++
	s.mu.Lock()
	s.queue = append(s.queue, e)
	depth := len(s.queue)
	s.mu.Unlock()

	s.archive(ctx, e, Retrying, err.Error())
	s.logger.Warn().
		Str("event", e.Name).
		Str("request_id", e.RequestID).
		Int("attempt", e.RetryAttempts).
		Int("queue_depth", depth).
		Err(err).
		Msg("handler failed, queued for retry")
	return Result{Error: err.Error(), Queued: true}
}

/* Drain runs one redelivery pass over the retry queue.
 * Single-flight: a call while a pass is in progress is a no-op, so two
 * schedules can never duplicate-process the same items. The pass works on
 * a snapshot; items failing again land in the live queue, never back in
 * the snapshot.
 */
func (s *Service) Drain(ctx context.Context) {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	defer s.draining.Store(false)

	s.mu.Lock()
	items := s.queue
	s.queue = nil
	s.mu.Unlock()

	if len(items) == 0 {
		return
	}
	s.logger.Info().Int("items", len(items)).Msg("draining retry queue")

	for i, e := range items {
		if i > 0 {
			// sequential with a delay between items to bound the load on
			// downstream collaborators during a failure burst
			select {
			case <-ctx.Done():
				s.requeue(items[i:])
				return
			case <-time.After(s.settings.RetryDelay):
			}
		}
		if ctx.Err() != nil {
			s.requeue(items[i:])
			return
		}
		s.deliver(ctx, e)
	}
}

// requeue returns unprocessed snapshot items without touching their attempts
func (s *Service) requeue(items []Event) {
	s.mu.Lock()
	s.queue = append(s.queue, items...)
	s.mu.Unlock()
}

// Start launches the periodic drain loop for the process lifetime
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.settings.DrainInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.Drain(ctx)
			}
		}
	}()
}

// Stop halts the drain loop. Best-effort: queued events are in-memory and
// do not survive process shutdown.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// Stats reports pipeline introspection counters
func (s *Service) Stats() Stats {
	s.mu.Lock()
	depth := len(s.queue)
	s.mu.Unlock()

	return Stats{
		RegisteredHandlers: s.registry.Len(),
		EventNames:         s.registry.Names(),
		QueueDepth:         depth,
		DrainInProgress:    s.draining.Load(),
	}
}

// archive records the latest attempt in the delivery archive, best-effort
func (s *Service) archive(ctx context.Context, e Event, o Outcome, lastError string) {
	if err := s.repo.UpdateOutcome(ctx, e.DeliveryID, o, e.RetryAttempts, lastError); err != nil {
		s.logger.Error().Err(err).Str("delivery_id", e.DeliveryID).Msg("archiving delivery outcome")
	}
}
