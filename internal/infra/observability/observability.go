// Package observability records operation spans and Prometheus metrics for
// the reward engine.
//
// This provides:
//   - In-memory spans for every session operation (log, spend, allocate, ...)
//   - Request-ID propagation from the HTTP layer into spans
//   - Prometheus counters/gauges for points, levels, balances and spends
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ═══════════════════════════════════════════════════════════════════════════
// Operation Spans
// ═══════════════════════════════════════════════════════════════════════════

// Span represents one engine operation.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Status    SpanStatus        `json:"status"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// SpanStatus indicates success/failure.
type SpanStatus int

const (
	SpanOK SpanStatus = iota
	SpanError
)

// ─── Tracer ─────────────────────────────────────────────────────────────────

// Tracer keeps the most recent spans in a bounded buffer.
type Tracer struct {
	mu       sync.Mutex
	spans    []Span
	maxSpans int
	enabled  bool
}

// TracerConfig configures the tracer.
type TracerConfig struct {
	Enabled  bool
	MaxSpans int // ring buffer size (default 1_000)
}

// DefaultTracerConfig returns production defaults.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enabled:  true,
		MaxSpans: 1_000,
	}
}

// NewTracer creates a new tracer.
func NewTracer(cfg TracerConfig) *Tracer {
	if cfg.MaxSpans <= 0 {
		cfg.MaxSpans = DefaultTracerConfig().MaxSpans
	}
	return &Tracer{
		spans:    make([]Span, 0, cfg.MaxSpans),
		maxSpans: cfg.MaxSpans,
		enabled:  cfg.Enabled,
	}
}

// StartSpan begins a new span. The caller must call EndSpan when done.
// A nil tracer returns a throwaway span.
func (t *Tracer) StartSpan(ctx context.Context, operation string, attrs map[string]string) *Span {
	if t == nil || !t.enabled {
		return &Span{Operation: operation}
	}

	return &Span{
		TraceID:   traceIDFromContext(ctx),
		SpanID:    uuid.NewString(),
		ParentID:  spanIDFromContext(ctx),
		Operation: operation,
		StartTime: time.Now(),
		Status:    SpanOK,
		Attrs:     attrs,
	}
}

// EndSpan completes a span and records it.
func (t *Tracer) EndSpan(span *Span, err error) {
	if t == nil || !t.enabled || span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	if err != nil {
		span.Status = SpanError
		if span.Attrs == nil {
			span.Attrs = make(map[string]string)
		}
		span.Attrs["error"] = err.Error()
		OperationErrors.WithLabelValues(span.Operation).Inc()
	}
	OperationDuration.WithLabelValues(span.Operation).Observe(span.Duration.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity
	if len(t.spans) >= t.maxSpans {
		t.spans = t.spans[1:]
	}
	t.spans = append(t.spans, *span)
}

// Spans returns a copy of the most recent spans.
func (t *Tracer) Spans(limit int) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.spans) {
		limit = len(t.spans)
	}

	start := len(t.spans) - limit
	out := make([]Span, limit)
	copy(out, t.spans[start:])
	return out
}

// SpanCount returns the number of recorded spans.
func (t *Tracer) SpanCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Reset clears all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

// ─── Context Helpers ────────────────────────────────────────────────────────

type contextKey string

const (
	traceIDKey contextKey = "pickuppal-trace-id"
	spanIDKey  contextKey = "pickuppal-span-id"
)

// WithTraceID returns a context with the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID returns a context with the given span ID.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

func traceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

func spanIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(spanIDKey).(string); ok {
		return v
	}
	return ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Prometheus Metrics
// ═══════════════════════════════════════════════════════════════════════════

// ─── Reward Metrics ─────────────────────────────────────────────────────────

// ActivitiesLogged counts logged reward events by kind.
var ActivitiesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "reward",
	Name:      "activities_total",
	Help:      "Total reward events logged, by kind (pickup, delivery).",
}, []string{"kind"})

// PointsEarned counts points awarded by source.
var PointsEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "reward",
	Name:      "points_earned_total",
	Help:      "Total points awarded, by source (pickup, delivery, steps, roulette).",
}, []string{"source"})

// CarbonReduced counts kg of CO₂ saved by pickups.
var CarbonReduced = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "reward",
	Name:      "carbon_reduced_kg_total",
	Help:      "Total kg of CO2 saved by pickups.",
})

// ─── Progression Metrics ────────────────────────────────────────────────────

// LevelUps counts level-up transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "progression",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// UserLevel tracks the session user's level.
var UserLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pickuppal",
	Subsystem: "progression",
	Name:      "level",
	Help:      "Current level of the session user.",
})

// UserExperience tracks the session user's ranking score.
var UserExperience = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pickuppal",
	Subsystem: "progression",
	Name:      "experience",
	Help:      "Current experience (ranking score) of the session user.",
})

// ─── Spending Metrics ───────────────────────────────────────────────────────

// SpendableBalance tracks the session user's usable points.
var SpendableBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pickuppal",
	Subsystem: "spending",
	Name:      "balance",
	Help:      "Current spendable balance of the session user.",
})

// SpendAttempts counts spends by kind and result (ok, miss).
var SpendAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "spending",
	Name:      "attempts_total",
	Help:      "Total spend attempts, by kind and result.",
}, []string{"kind", "result"})

// PointsSpent counts points debited by kind.
var PointsSpent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "spending",
	Name:      "points_spent_total",
	Help:      "Total points debited, by kind (coupon, roulette, checkout, spend).",
}, []string{"kind"})

// StatPointsAllocated counts stat points moved into attack/defense.
var StatPointsAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "spending",
	Name:      "stat_points_allocated_total",
	Help:      "Total stat points allocated, by stat.",
}, []string{"stat"})

// ─── Session Metrics ────────────────────────────────────────────────────────

// QueueDepth tracks operations waiting on the session queue.
var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pickuppal",
	Subsystem: "session",
	Name:      "queue_depth",
	Help:      "Operations waiting on the single-owner session queue.",
})

// OperationDuration tracks session operation latency.
var OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "pickuppal",
	Subsystem: "session",
	Name:      "operation_seconds",
	Help:      "Session operation latency in seconds.",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
}, []string{"operation"})

// OperationErrors counts failed session operations.
var OperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "session",
	Name:      "operation_errors_total",
	Help:      "Total failed session operations.",
}, []string{"operation"})

// FriendRequests counts friend requests by result.
var FriendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pickuppal",
	Subsystem: "session",
	Name:      "friend_requests_total",
	Help:      "Total friend requests, by result (added, rejected).",
}, []string{"result"})
