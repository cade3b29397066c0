// Package breach binds the account breach and password exposure endpoints.
package breach

import (
	"context"
	"errors"
	"net/http"

	"github.com/ahrav/breachcheck/internal/api/errs"
	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/domain/exposure"
	"github.com/ahrav/breachcheck/internal/domain/shared"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/web"
)

// PasswordChecker runs a k-anonymity exposure check for a secret.
type PasswordChecker interface {
	Check(ctx context.Context, secret string) (exposure.Verdict, error)
}

// Lookup resolves accounts and breach names against the breach directory.
type Lookup interface {
	CheckEmail(ctx context.Context, email string) (breach.EmailResult, error)
	GetBreachDetails(ctx context.Context, name string) (breach.Breach, error)
}

// Metrics records lookup outcomes. It is optional.
type Metrics interface {
	IncPasswordChecks(ctx context.Context, riskLevel string)
	IncEmailChecks(ctx context.Context, exposed bool)
	IncUpstreamErrors(ctx context.Context, operation, reason string)
}

// Config contains the dependencies needed by the breach handlers.
type Config struct {
	Log     *logger.Logger
	Checker PasswordChecker
	Lookup  Lookup
	Metrics Metrics
}

// Routes binds all the breach endpoints.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	app.HandlerFunc(http.MethodPost, group, "/breach/check-email", checkEmail(cfg))
	app.HandlerFunc(http.MethodPost, group, "/breach/check-password", checkPassword(cfg))
	app.HandlerFunc(http.MethodGet, group, "/breach/breach/{name}", breachDetails(cfg))
}

func checkEmail(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		var req emailRequest
		if err := decode(r, &req); err != nil {
			return err
		}

		res, err := cfg.Lookup.CheckEmail(ctx, req.Email)
		if err != nil {
			cfg.upstreamFailure(ctx, "check_email", err)
			return errs.New(errs.Internal, err).WithTitle("Failed to check email")
		}

		if cfg.Metrics != nil {
			cfg.Metrics.IncEmailChecks(ctx, res.IsExposed)
		}

		return toEmailResponse(req.Email, res)
	}
}

func checkPassword(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		var req passwordRequest
		if err := decode(r, &req); err != nil {
			return err
		}

		verdict, err := cfg.Checker.Check(ctx, req.Password)
		if err != nil {
			cfg.upstreamFailure(ctx, "check_password", err)
			return errs.New(errs.Internal, err).WithTitle("Failed to check password")
		}

		if cfg.Metrics != nil {
			cfg.Metrics.IncPasswordChecks(ctx, verdict.RiskLevel.String())
		}

		return toPasswordResponse(verdict)
	}
}

func breachDetails(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		name := web.Param(r, "name")
		if name == "" {
			return errs.New(errs.InvalidArgument, errs.NewFieldErrors("name", errors.New("name is required")))
		}

		b, err := cfg.Lookup.GetBreachDetails(ctx, name)
		if err != nil {
			if errors.Is(err, breach.ErrNotFound) {
				return errs.Newf(errs.NotFound, "breach %q was not found", name).WithTitle("Breach not found")
			}
			cfg.upstreamFailure(ctx, "breach_details", err)
			return errs.New(errs.Internal, err).WithTitle("Failed to get breach details")
		}

		return detailsResponse{Success: true, Breach: b}
	}
}

// decode reads and validates the request body. An absent body is validated
// as an empty payload so the client gets the field level message.
func decode(r *http.Request, val any) *errs.Error {
	if err := web.Decode(r, val); err != nil && !errors.Is(err, web.ErrEmptyBody) {
		return errs.New(errs.InvalidArgument, err)
	}

	if err := errs.Check(val); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	return nil
}

func (cfg Config) upstreamFailure(ctx context.Context, op string, err error) {
	if cfg.Metrics == nil {
		return
	}

	reason := "unavailable"
	if errors.Is(err, shared.ErrUpstreamTimeout) {
		reason = "timeout"
	}
	cfg.Metrics.IncUpstreamErrors(ctx, op, reason)
}
