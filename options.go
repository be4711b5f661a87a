package avretry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avretry/observability"
)

// tracerName identifies spans produced by WithTracing.
const tracerName = "avretry"

// NotifyFunc is called before each backoff wait with the error that failed
// the attempt, the 1-based attempt number, and the delay about to be served.
type NotifyFunc func(err error, attempt int, delay time.Duration)

// Option configures a retry session.
type Option func(*options)

type options struct {
	logger  observability.Logger
	metrics *observability.RetryMetrics
	tracer  trace.Tracer
	notify  NotifyFunc
	name    string
	session string
}

// WithLogger sets the logger for the session. Retries are logged at debug
// level, terminal failures at warn level.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records attempts, retries, and outcomes to the given metrics.
func WithMetrics(m *observability.RetryMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer traces the session with the given tracer: one span per session
// with an event per retry.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithTracing traces the session with the globally registered OTEL tracer
// provider.
func WithTracing() Option {
	return func(o *options) {
		o.tracer = otel.Tracer(tracerName)
	}
}

// WithName names the operation in logs, metric labels, and span names.
// The default is "operation".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithNotify registers a callback invoked before each backoff wait.
func WithNotify(fn NotifyFunc) Option {
	return func(o *options) {
		o.notify = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: observability.NopLogger(),
		name:   "operation",
	}
	for _, opt := range opts {
		opt(o)
	}
	o.session = uuid.NewString()
	return o
}

// startSpan opens the session span when tracing is configured. The returned
// span is nil otherwise.
func (o *options) startSpan(ctx context.Context) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, nil
	}
	return o.tracer.Start(ctx, "retry."+o.name,
		trace.WithAttributes(attribute.String("retry.session", o.session)),
	)
}

func (o *options) observeAttempt() {
	if o.metrics != nil {
		o.metrics.ObserveAttempt(o.name)
	}
}

func (o *options) observeRetry(span trace.Span, attempt int, delay time.Duration, err error) {
	o.logger.Debug("retrying operation",
		observability.String("operation", o.name),
		observability.String("session", o.session),
		observability.Int("attempt", attempt),
		observability.Duration("backoff", delay),
		observability.Error(err),
	)

	if o.notify != nil {
		o.notify(err, attempt, delay)
	}
	if o.metrics != nil {
		o.metrics.ObserveRetry(o.name, delay)
	}
	if span != nil {
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("backoff", delay.String()),
		))
	}
}

// finish records the terminal outcome and closes the session span.
func (o *options) finish(span trace.Span, attempt int, outcome string, err error) {
	if err != nil {
		o.logger.Warn("retry session ended without success",
			observability.String("operation", o.name),
			observability.String("session", o.session),
			observability.String("outcome", outcome),
			observability.Int("attempts", attempt),
			observability.Error(err),
		)
	}

	if o.metrics != nil {
		o.metrics.ObserveOutcome(o.name, outcome)
	}
	if span != nil {
		span.SetAttributes(
			attribute.Int("retry.attempts", attempt),
			attribute.String("retry.outcome", outcome),
		)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
