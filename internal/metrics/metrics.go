package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the blog's instruments. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequests        metric.Int64Counter
	HTTPDuration        metric.Float64Histogram
	CacheHits           metric.Int64Counter
	CacheMisses         metric.Int64Counter
	ActiveConnections   metric.Int64UpDownCounter
	Translations        metric.Int64Counter
	TranslationDuration metric.Float64Histogram
	PostWrites          metric.Int64Counter
	Uploads             metric.Int64Counter
	ContactMessages     metric.Int64Counter
}

// Setup builds the instruments on a private Prometheus registry and returns
// the handler serving it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)
	m := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequests, "blog_http_requests_total", "Total number of HTTP requests"},
		{&m.CacheHits, "blog_cache_hits_total", "Total number of cache hits"},
		{&m.CacheMisses, "blog_cache_misses_total", "Total number of cache misses"},
		{&m.Translations, "blog_translations_total", "Translation API calls by outcome"},
		{&m.PostWrites, "blog_post_writes_total", "Post create, update and delete operations"},
		{&m.Uploads, "blog_uploads_total", "Image uploads by outcome"},
		{&m.ContactMessages, "blog_contact_messages_total", "Contact form submissions"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, nil, err
		}
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"blog_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.TranslationDuration, err = meter.Float64Histogram(
		"blog_translation_duration_seconds",
		metric.WithDescription("Translation API latency in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ActiveConnections, err = meter.Int64UpDownCounter(
		"blog_websocket_connections",
		metric.WithDescription("Number of active admin WebSocket connections"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// keyFamily trims a cache key to its first two segments so per-slug keys
// share a series.
func keyFamily(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return key
	}
	return parts[0] + ":" + parts[1]
}

func (m *Metrics) RecordCacheHit(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key", keyFamily(key))))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("key", keyFamily(key))))
}

func (m *Metrics) IncrementConnections(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, 1)
}

func (m *Metrics) DecrementConnections(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, -1)
}

func (m *Metrics) RecordTranslation(ctx context.Context, source, target string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("target", target),
		attribute.Bool("ok", ok),
	)
	m.Translations.Add(ctx, 1, labels)
	m.TranslationDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordPostWrite counts a post mutation; op is create, update or delete.
func (m *Metrics) RecordPostWrite(ctx context.Context, op string, ok bool) {
	if m == nil {
		return
	}
	m.PostWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op), attribute.Bool("ok", ok)))
}

func (m *Metrics) RecordUpload(ctx context.Context, outcome string, bytes int64) {
	if m == nil {
		return
	}
	m.Uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordContactMessage(ctx context.Context) {
	if m == nil {
		return
	}
	m.ContactMessages.Add(ctx, 1)
}
