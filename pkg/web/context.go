package web

import (
	"context"
	"time"
)

type ctxKey int

const key ctxKey = 1

// Values represent state for each request.
type Values struct {
	RequestID  string
	TraceID    string
	Now        time.Time
	StatusCode int
}

// GetValues returns the values from the context.
func GetValues(ctx context.Context) *Values {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return &Values{
			TraceID: "00000000000000000000000000000000",
			Now:     time.Now(),
		}
	}

	return v
}

// GetRequestID returns the request id from the context.
func GetRequestID(ctx context.Context) string {
	return GetValues(ctx).RequestID
}

// SetTraceID sets the trace id for the request.
func SetTraceID(ctx context.Context, traceID string) {
	if v, ok := ctx.Value(key).(*Values); ok {
		v.TraceID = traceID
	}
}

func setStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

func setValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, key, v)
}
