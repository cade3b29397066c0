package otel

import (
	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// GetMeterProvider returns the globally registered meter provider.
func GetMeterProvider() metric.MeterProvider {
	return otelapi.GetMeterProvider()
}

// NewResource creates a new OpenTelemetry resource with service name and any
// extra attributes.
func NewResource(serviceName string, attrs map[string]string) *resource.Resource {
	kvs := make([]attribute.KeyValue, 0, len(attrs)+1)
	kvs = append(kvs, semconv.ServiceNameKey.String(serviceName))
	kvs = append(kvs, attributesFromMap(attrs)...)

	return resource.NewWithAttributes(semconv.SchemaURL, kvs...)
}
