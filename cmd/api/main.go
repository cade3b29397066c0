package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/breachcheck/db"
	"github.com/ahrav/breachcheck/internal/api"
	"github.com/ahrav/breachcheck/internal/api/debug"
	"github.com/ahrav/breachcheck/internal/api/mux"
	"github.com/ahrav/breachcheck/internal/api/routes"
	appadvisory "github.com/ahrav/breachcheck/internal/app/advisory"
	appbreach "github.com/ahrav/breachcheck/internal/app/breach"
	appexposure "github.com/ahrav/breachcheck/internal/app/exposure"
	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/infra/hibp"
	"github.com/ahrav/breachcheck/internal/infra/httpclient"
	"github.com/ahrav/breachcheck/internal/infra/openai"
	"github.com/ahrav/breachcheck/internal/infra/redaction"
	"github.com/ahrav/breachcheck/internal/infra/storage/breach/memory"
	catalogStore "github.com/ahrav/breachcheck/internal/infra/storage/breach/postgres"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/common/otel"
	"github.com/ahrav/breachcheck/pkg/config"
)

var build = "develop"

const serviceType = "breachcheck-api"

// configFileEnv names the optional YAML config file.
const configFileEnv = "BREACHCHECK_CONFIG_FILE"

func main() {
	// Set the correct number of threads for the service
	_, _ = maxprocs.Set()

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("failed to get hostname: %v", err)
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx, os.Getenv(configFileEnv))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logEvents := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			errorAttrs := map[string]any{
				"error_message": r.Message,
				"error_time":    r.Time.UTC().Format(time.RFC3339),
				"trace_id":      otel.GetTraceID(ctx),
			}

			// Add any error-specific attributes.
			for k, v := range r.Attributes {
				errorAttrs[k] = v
			}

			errorAttrsJSON, err := json.Marshal(errorAttrs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to marshal error attributes: %v\n", err)
				return
			}

			fmt.Fprintf(os.Stderr, "Error event: %s, details: %s\n", r.Message, errorAttrsJSON)
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return otel.GetTraceID(ctx)
	}

	metadata := map[string]string{
		"hostname":  hostname,
		"pod":       os.Getenv("POD_NAME"),
		"namespace": os.Getenv("POD_NAMESPACE"),
		"app":       serviceType,
	}

	out := logger.Output(logger.FileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	log := logger.NewWithMetadata(out, logger.ParseLevel(cfg.Log.Level), cfg.Service.Name, traceIDFn, logEvents, metadata)

	if err := run(ctx, log, cfg, hostname); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config, hostname string) error {
	// -------------------------------------------------------------------------
	// GOMAXPROCS
	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	// -------------------------------------------------------------------------
	// Start Tracing Support
	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTelemetry(log, otel.Config{
		ServiceName:      cfg.Service.Name,
		ExporterEndpoint: cfg.Telemetry.Endpoint,
		ExcludedRoutes: map[string]struct{}{
			"/v1/readiness": {},
			"/v1/liveness":  {},
			"/debug":        {},
			"/metrics":      {},
		},
		Probability: cfg.Telemetry.Probability,
		ResourceAttributes: map[string]string{
			"library.language": "go",
			"k8s.pod.name":     os.Getenv("POD_NAME"),
			"k8s.namespace":    os.Getenv("POD_NAMESPACE"),
			"k8s.container.id": hostname,
		},
		InsecureExporter: cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer teardown(ctx)

	tracer := traceProvider.Tracer(cfg.Service.Name)

	// -------------------------------------------------------------------------
	// Start Debug Service

	if cfg.Web.DebugHost != "" {
		go func() {
			log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

			if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux(build)); err != nil {
				log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "msg", err)
			}
		}()
	}

	// -------------------------------------------------------------------------
	// Breach Catalog

	var (
		catalog breach.CatalogStore
		pinger  mux.Pinger
	)

	if cfg.Database.URL != "" {
		log.Info(ctx, "startup", "status", "initializing database support")

		poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("parsing db config: %w", err)
		}
		poolCfg.MinConns = cfg.Database.MinConns
		poolCfg.MaxConns = cfg.Database.MaxConns
		poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("creating db pool: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(pool); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		catalog = catalogStore.NewCatalogStore(pool, tracer)
		pinger = pool
	} else {
		log.Info(ctx, "startup", "status", "database url not set, using in-memory breach catalog")
		catalog = memory.NewCatalogStore()
	}

	// -------------------------------------------------------------------------
	// Upstream Clients

	breachHTTP := httpclient.New(httpclient.Config{
		Timeout:         cfg.Breach.Timeout,
		MaxRetries:      cfg.Breach.MaxRetries,
		InitialInterval: cfg.Breach.InitialInterval,
		MaxInterval:     cfg.Breach.MaxInterval,
	})
	breachClient := hibp.NewBreachClient(hibp.BreachConfig{
		BaseURL:   cfg.Breach.BaseURL,
		APIKey:    cfg.Breach.APIKey,
		UserAgent: cfg.Breach.UserAgent,
		RateLimit: cfg.Breach.RateLimit,
		Burst:     cfg.Breach.Burst,
	}, breachHTTP, log, tracer)

	// The range query is never retried; the checker makes exactly one call.
	rangeHTTP := httpclient.New(httpclient.Config{Timeout: cfg.Password.Timeout})
	rangeClient := hibp.NewRangeClient(hibp.RangeConfig{
		BaseURL:    cfg.Password.BaseURL,
		UserAgent:  cfg.Password.UserAgent,
		AddPadding: cfg.Password.AddPadding,
	}, rangeHTTP, tracer)

	advisoryHTTP := httpclient.New(httpclient.Config{Timeout: cfg.Advisory.Timeout})
	completer := openai.NewClient(openai.Config{
		BaseURL: cfg.Advisory.BaseURL,
		APIKey:  cfg.Advisory.APIKey,
		Model:   cfg.Advisory.Model,
	}, advisoryHTTP, log, tracer)

	redactor, err := redaction.NewRedactor(log, tracer)
	if err != nil {
		return fmt.Errorf("creating redactor: %w", err)
	}

	// -------------------------------------------------------------------------
	// Application Services

	checker := appexposure.NewPasswordExposureChecker(
		appexposure.Config{Timeout: cfg.Password.Timeout}, rangeClient, log, tracer)
	breachService := appbreach.NewService(
		appbreach.Config{CatalogTTL: cfg.Breach.CatalogTTL}, breachClient, catalog, log, tracer)
	advisoryService := appadvisory.NewService(
		appadvisory.Config{APIKey: cfg.Advisory.APIKey}, completer, redactor, log, tracer)

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing API support")

	metricCollector, err := api.NewAPIMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("creating metrics collector: %w", err)
	}

	// Initialize centralized mux configuration with all dependencies.
	cfgMux := mux.Config{
		Build:           build,
		Log:             log,
		Tracer:          tracer,
		Metrics:         metricCollector,
		DB:              pinger,
		ExposureChecker: checker,
		BreachService:   breachService,
		AdvisoryService: advisoryService,
	}

	webAPI := mux.WebAPI(cfgMux,
		routes.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	apiServer := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(ctx, "startup", "status", "api router started", "host", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// -------------------------------------------------------------------------
	// Shutdown

	g.Go(func() error {
		<-gctx.Done()

		log.Info(ctx, "shutdown", "status", "shutdown started")
		defer log.Info(ctx, "shutdown", "status", "shutdown complete")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(sctx); err != nil {
			_ = apiServer.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})

	return g.Wait()
}
