// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package instrumentation sets up the OpenTelemetry SDK: trace and meter
// providers, the Prometheus reader behind /metrics, and propagation.
package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// OTelProtocolHTTP is the OTLP over HTTP/protobuf protocol.
	OTelProtocolHTTP = "http"

	// OTelExporterOTLP exports over OTLP.
	OTelExporterOTLP = "otlp"
	// OTelExporterPrometheus exposes metrics for scraping.
	OTelExporterPrometheus = "prometheus"
	// OTelExporterNone disables an exporter.
	OTelExporterNone = "none"
)

const defaultServiceName = "lfx-v2-meeting-sync"

// OTelConfig holds the OpenTelemetry settings, normally read from OTEL_* variables.
type OTelConfig struct {
	ServiceName       string
	ServiceVersion    string
	Protocol          string
	Endpoint          string
	Insecure          bool
	TracesExporter    string
	TracesSampleRatio float64
	MetricsExporter   string
}

// OTelConfigFromEnv reads the configuration from the environment.
func OTelConfigFromEnv() OTelConfig {
	cfg := OTelConfig{
		ServiceName:       os.Getenv("OTEL_SERVICE_NAME"),
		ServiceVersion:    os.Getenv("OTEL_SERVICE_VERSION"),
		Protocol:          os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"),
		Endpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:          os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		TracesExporter:    os.Getenv("OTEL_TRACES_EXPORTER"),
		TracesSampleRatio: 1.0,
		MetricsExporter:   os.Getenv("OTEL_METRICS_EXPORTER"),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.Protocol == "" {
		cfg.Protocol = OTelProtocolHTTP
	}
	if cfg.TracesExporter == "" {
		cfg.TracesExporter = OTelExporterNone
	}
	if cfg.MetricsExporter == "" {
		cfg.MetricsExporter = OTelExporterPrometheus
	}
	if raw := os.Getenv("OTEL_TRACES_SAMPLE_RATIO"); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio >= 0 && ratio <= 1 {
			cfg.TracesSampleRatio = ratio
		}
	}
	return cfg
}

// SDK is an initialized OpenTelemetry setup.
type SDK struct {
	mu            sync.Mutex
	shutdownFuncs []func(context.Context) error
	registry      *prometheus.Registry
}

// SetupOTelSDK initializes the SDK from the environment.
func SetupOTelSDK(ctx context.Context) (*SDK, error) {
	return SetupOTelSDKWithConfig(ctx, OTelConfigFromEnv())
}

// SetupOTelSDKWithConfig initializes the SDK and installs the global providers.
// Callers must call Shutdown to flush telemetry.
func SetupOTelSDKWithConfig(ctx context.Context, cfg OTelConfig) (*SDK, error) {
	if cfg.Protocol != "" && cfg.Protocol != OTelProtocolHTTP {
		return nil, fmt.Errorf("unsupported OTLP protocol %q", cfg.Protocol)
	}

	sdk := &SDK{}
	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	otel.SetTextMapPropagator(newPropagator())

	if cfg.TracesExporter != OTelExporterNone {
		tp, err := newTracerProvider(ctx, cfg, res)
		if err != nil {
			return nil, errors.Join(err, sdk.Shutdown(ctx))
		}
		sdk.shutdownFuncs = append(sdk.shutdownFuncs, tp.Shutdown)
		otel.SetTracerProvider(tp)
	}

	if cfg.MetricsExporter != OTelExporterNone {
		mp, err := sdk.newMeterProvider(ctx, cfg, res)
		if err != nil {
			return nil, errors.Join(err, sdk.Shutdown(ctx))
		}
		sdk.shutdownFuncs = append(sdk.shutdownFuncs, mp.Shutdown)
		otel.SetMeterProvider(mp)
	}

	return sdk, nil
}

// Shutdown flushes and stops every provider. Calling it again is a no-op.
func (s *SDK) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	funcs := s.shutdownFuncs
	s.shutdownFuncs = nil
	s.mu.Unlock()

	var err error
	for _, fn := range funcs {
		err = errors.Join(err, fn(ctx))
	}
	return err
}

// MetricsHandler serves the Prometheus registry, or 404 when Prometheus is not the metrics exporter.
func (s *SDK) MetricsHandler() http.Handler {
	if s.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func newResource(cfg OTelConfig) (*resource.Resource, error) {
	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", name)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	if hostname, err := os.Hostname(); err == nil {
		attrs = append(attrs, attribute.String("service.instance.id", hostname))
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTracerProvider(ctx context.Context, cfg OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if cfg.TracesExporter != OTelExporterOTLP {
		return nil, fmt.Errorf("unsupported traces exporter %q", cfg.TracesExporter)
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TracesSampleRatio))),
	), nil
}

func (s *SDK) newMeterProvider(ctx context.Context, cfg OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var reader sdkmetric.Reader

	switch cfg.MetricsExporter {
	case OTelExporterPrometheus:
		s.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(s.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter

	case OTelExporterOTLP:
		var opts []otlpmetrichttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter)

	default:
		return nil, fmt.Errorf("unsupported metrics exporter %q", cfg.MetricsExporter)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}
