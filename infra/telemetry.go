package infra

import (
	"context"
	"log"

	"github.com/tnqbao/gau-drive-service/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type TelemetryClient struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	ObjectUploads   metric.Int64Counter
	ObjectDownloads metric.Int64Counter
	ObjectDeletes   metric.Int64Counter

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// InitTelemetryClient wires OTLP trace and metric pipelines. With no endpoint
// configured the global no-op providers are used, so instrument calls stay
// valid everywhere.
func InitTelemetryClient(cfg *config.EnvConfig) *TelemetryClient {
	tc := &TelemetryClient{}
	ctx := context.Background()

	if cfg.Grafana.OTLPEndpoint != "" {
		res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.Grafana.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment.Mode),
		))
		if err != nil {
			res = resource.Default()
		}

		traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		))
		if err != nil {
			log.Printf("Warning: OTLP trace exporter init failed: %v", err)
		} else {
			tc.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(res),
			)
			otel.SetTracerProvider(tc.tracerProvider)
		}

		metricExporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		)
		if err != nil {
			log.Printf("Warning: OTLP metric exporter init failed: %v", err)
		} else {
			tc.meterProvider = sdkmetric.NewMeterProvider(
				sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
				sdkmetric.WithResource(res),
			)
			otel.SetMeterProvider(tc.meterProvider)

			if err := runtime.Start(runtime.WithMeterProvider(tc.meterProvider)); err != nil {
				log.Printf("Warning: runtime instrumentation failed: %v", err)
			}
		}
	}

	tc.Tracer = otel.Tracer(cfg.Grafana.ServiceName)
	tc.Meter = otel.Meter(cfg.Grafana.ServiceName)

	var err error
	if tc.ObjectUploads, err = tc.Meter.Int64Counter("drive.object.uploads"); err != nil {
		log.Printf("Warning: failed to create upload counter: %v", err)
	}
	if tc.ObjectDownloads, err = tc.Meter.Int64Counter("drive.object.downloads"); err != nil {
		log.Printf("Warning: failed to create download counter: %v", err)
	}
	if tc.ObjectDeletes, err = tc.Meter.Int64Counter("drive.object.deletes"); err != nil {
		log.Printf("Warning: failed to create delete counter: %v", err)
	}

	return tc
}

func (t *TelemetryClient) Shutdown(ctx context.Context) {
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Warning: tracer provider shutdown failed: %v", err)
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("Warning: meter provider shutdown failed: %v", err)
		}
	}
}
