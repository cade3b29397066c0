// Package mux provides support to bind domain level routes to the
// application mux.
package mux

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/breachcheck/internal/api"
	"github.com/ahrav/breachcheck/internal/api/mid"
	appadvisory "github.com/ahrav/breachcheck/internal/app/advisory"
	appbreach "github.com/ahrav/breachcheck/internal/app/breach"
	appexposure "github.com/ahrav/breachcheck/internal/app/exposure"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/web"
)

// Options represent optional parameters.
type Options struct {
	corsOrigin []string
}

// WithCORS provides configuration options for CORS.
func WithCORS(origins []string) func(opts *Options) {
	return func(opts *Options) {
		opts.corsOrigin = origins
	}
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build   string
	Log     *logger.Logger
	Tracer  trace.Tracer
	Metrics api.APIMetrics

	// DB is nil when the breach catalog is held in memory.
	DB Pinger

	ExposureChecker *appexposure.PasswordExposureChecker
	BreachService   *appbreach.Service
	AdvisoryService *appadvisory.Service
}

// RouteAdder defines behavior that sets the routes to bind for an instance
// of the service.
type RouteAdder interface {
	Add(app *web.App, cfg Config)
}

// WebAPI constructs a http.Handler with all application routes bound.
func WebAPI(cfg Config, routeAdder RouteAdder, options ...func(opts *Options)) http.Handler {
	logger := func(ctx context.Context, msg string, args ...any) {
		cfg.Log.Info(ctx, msg, args...)
	}

	mw := []web.MidFunc{
		mid.Otel(cfg.Tracer),
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
	}
	if cfg.Metrics != nil {
		mw = append(mw, mid.Metrics(cfg.Metrics))
	}
	mw = append(mw, mid.Panics())

	app := web.NewApp(logger, cfg.Tracer, mw...)

	var opts Options
	for _, option := range options {
		option(&opts)
	}

	if len(opts.corsOrigin) > 0 {
		app.EnableCORS(opts.corsOrigin)
	}

	routeAdder.Add(app, cfg)

	return app
}
