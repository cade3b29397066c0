package mid

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/pkg/common/otel"
	"github.com/ahrav/breachcheck/pkg/web"
)

// Otel starts the otel tracing and stores the trace id in the context.
func Otel(tracer trace.Tracer) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx, span := otel.InjectTracing(ctx, tracer, r)
			defer span.End()

			web.SetTraceID(ctx, otel.GetTraceID(ctx))

			return next(ctx, r)
		}

		return h
	}

	return m
}
