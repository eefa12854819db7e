// Package observability wires the process-wide slog default.
//
// Logs always go to stderr in text or JSON form. When OTLP log export is
// enabled through the standard OTEL environment variables, records are
// additionally fanned out through the otelslog bridge with a severity
// filter, so chat traffic can be shipped to a collector without changing
// any call sites.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "seedrbot"

// loggerProvider is retained for flushing at shutdown. Nil when OTLP export
// is not enabled.
var loggerProvider *sdklog.LoggerProvider

// Instrument installs the process-wide slog default. Call once, before any
// component logs.
func Instrument(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	switch format {
	case "json":
		base = slog.NewJSONHandler(os.Stderr, opts)
	default:
		base = slog.NewTextHandler(os.Stderr, opts)
	}

	exporter, err := newLogExporter(context.Background())
	if err != nil {
		return fmt.Errorf("creating log exporter: %w", err)
	}
	if exporter == nil {
		slog.SetDefault(slog.New(base))
		return nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return fmt.Errorf("building resource: %w", err)
	}

	loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))),
		sdklog.WithResource(res),
	)

	otelHandler := otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(loggerProvider))
	slog.SetDefault(slog.New(newFanoutHandler(base, otelHandler)))
	return nil
}

// Shutdown flushes any pending exported log records.
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}

// newLogExporter selects an exporter from OTEL_LOGS_EXPORTER: "otlp" (with
// OTEL_EXPORTER_OTLP_PROTOCOL choosing grpc or http), "console" for stdout,
// anything else disables export.
func newLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	switch os.Getenv("OTEL_LOGS_EXPORTER") {
	case "otlp":
		if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "grpc" {
			return otlploggrpc.New(ctx)
		}
		return otlploghttp.New(ctx)
	case "console":
		return stdoutlog.New()
	default:
		return nil, nil
	}
}

// severity maps the configured slog level onto the export filter, so the
// collector never receives records the stderr handler would drop.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level >= slog.LevelError:
		return minsev.SeverityError
	case level >= slog.LevelWarn:
		return minsev.SeverityWarn
	case level >= slog.LevelInfo:
		return minsev.SeverityInfo
	default:
		return minsev.SeverityDebug
	}
}

// fanoutHandler delivers each record to every underlying handler that is
// enabled for its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) *fanoutHandler {
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			_ = handler.Handle(ctx, record)
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: handlers}
}
