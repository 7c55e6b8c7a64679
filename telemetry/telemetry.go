package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers はOTLPへ送るトレースとログのプロバイダーです。
// 送信先は OTEL_EXPORTER_OTLP_ENDPOINT などの標準の環境変数で決まります。
type Providers struct {
	name   string
	tracer *sdktrace.TracerProvider
	logger *sdklog.LoggerProvider
}

// Setup はプロバイダーを作り、トレースはグローバルに登録します。
func Setup(ctx context.Context, serviceName string) (*Providers, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	logExporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("log exporter: %w", err), traceExporter.Shutdown(ctx))
	}

	p := &Providers{
		name: serviceName,
		tracer: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		logger: sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		),
	}
	otel.SetTracerProvider(p.tracer)
	return p, nil
}

// Handler はログをOTLPへ流す slog.Handler を返します。
func (p *Providers) Handler() slog.Handler {
	return otelslog.NewHandler(p.name, otelslog.WithLoggerProvider(p.logger))
}

// Shutdown は溜まっているデータを送り切ってから閉じます。
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.tracer.Shutdown(ctx), p.logger.Shutdown(ctx))
}

// ParseLevel は "debug" / "info" / "warn" / "error" をレベルに変換します。不明なら info です。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger はテキスト出力のロガーを作ります。extra があれば同じレコードをそちらにも流します。
func NewLogger(w io.Writer, level slog.Level, extra ...slog.Handler) *slog.Logger {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	if len(extra) == 0 {
		return slog.New(text)
	}
	return slog.New(slog.NewMultiHandler(append([]slog.Handler{text}, extra...)...))
}
