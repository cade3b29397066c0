package routes

import (
	"github.com/ahrav/breachcheck/internal/api/mux"
	"github.com/ahrav/breachcheck/internal/api/routes/advisory"
	"github.com/ahrav/breachcheck/internal/api/routes/breach"
	"github.com/ahrav/breachcheck/internal/api/routes/health"
	"github.com/ahrav/breachcheck/pkg/web"
)

// Routes constructs an add value which provides the implementation of
// RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

// Add implements the RouteAdder interface.
func (add) Add(app *web.App, cfg mux.Config) {
	// Health check routes
	health.Routes(app, health.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	// Breach routes
	breachCfg := breach.Config{
		Log:     cfg.Log,
		Checker: cfg.ExposureChecker,
		Lookup:  cfg.BreachService,
	}
	if cfg.Metrics != nil {
		breachCfg.Metrics = cfg.Metrics
	}
	breach.Routes(app, breachCfg)

	// Advisory routes
	advisory.Routes(app, advisory.Config{
		Log:     cfg.Log,
		Advisor: cfg.AdvisoryService,
	})
}
