package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	// OTel meters and instruments
	meter             metric.Meter
	queueDepthGauge   metric.Int64ObservableGauge
	handlerCountGauge metric.Int64ObservableGauge
	drainActiveGauge  metric.Int64ObservableGauge
	outcomeGauge      metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"webhook-gateway",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.retry.queue.depth",
		metric.WithDescription("Number of events awaiting redelivery"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeQueueDepth),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	oe.handlerCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.handlers.registered",
		metric.WithDescription("Number of event names with a registered handler"),
		metric.WithUnit("{handlers}"),
		metric.WithInt64Callback(oe.observeHandlerCount),
	)
	if err != nil {
		return fmt.Errorf("creating handler count gauge: %w", err)
	}

	oe.drainActiveGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.retry.drain.active",
		metric.WithDescription("Whether a retry queue drain pass is in progress"),
		metric.WithInt64Callback(oe.observeDrainActive),
	)
	if err != nil {
		return fmt.Errorf("creating drain active gauge: %w", err)
	}

	oe.outcomeGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.deliveries",
		metric.WithDescription("Number of archived deliveries by outcome"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeOutcomes),
	)
	if err != nil {
		return fmt.Errorf("creating deliveries gauge: %w", err)
	}

	return nil
}

// observeQueueDepth is a callback that reports the retry queue depth
func (oe *OTelExporter) observeQueueDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetQueueDepth(ctx)
	if err != nil {
		return err
	}
	observer.Observe(depth)
	return nil
}

// observeHandlerCount is a callback that reports registered handlers
func (oe *OTelExporter) observeHandlerCount(ctx context.Context, observer metric.Int64Observer) error {
	snapshot, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}
	observer.Observe(snapshot.RegisteredHandlers)
	return nil
}

// observeDrainActive is a callback that reports the drain single-flight flag
func (oe *OTelExporter) observeDrainActive(ctx context.Context, observer metric.Int64Observer) error {
	snapshot, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}
	var active int64
	if snapshot.DrainInProgress {
		active = 1
	}
	observer.Observe(active)
	return nil
}

// observeOutcomes is a callback that reports delivery counts by outcome
func (oe *OTelExporter) observeOutcomes(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetOutcomeCounts(ctx)
	if err != nil {
		return err
	}

	for outcome, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("delivery.outcome", outcome),
		))
	}
	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
