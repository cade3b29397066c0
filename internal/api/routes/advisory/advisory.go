// Package advisory binds the language-model backed advice endpoints.
package advisory

import (
	"context"
	"errors"
	"net/http"

	"github.com/ahrav/breachcheck/internal/api/errs"
	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/web"
)

// Advisor answers questions and generates password suggestions.
type Advisor interface {
	Ask(ctx context.Context, message string, c advisory.Context) (string, error)
	Recommend(ctx context.Context, c advisory.Context) (string, error)
	GeneratePasswords(ctx context.Context, r advisory.Requirements) ([]string, error)
}

// Config contains the dependencies needed by the advisory handlers.
type Config struct {
	Log     *logger.Logger
	Advisor Advisor
}

// Routes binds all the advisory endpoints.
func Routes(app *web.App, cfg Config) {
	const group = "api"

	app.HandlerFunc(http.MethodPost, group, "/ai/chat", chat(cfg))
	app.HandlerFunc(http.MethodPost, group, "/ai/recommendations", recommendations(cfg))
	app.HandlerFunc(http.MethodPost, group, "/ai/generate-password", generatePassword(cfg))
}

func chat(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		var req chatRequest
		if err := decode(r, &req); err != nil {
			return err
		}

		answer, err := cfg.Advisor.Ask(ctx, req.Message, req.Context.toDomain())
		if err != nil {
			return errs.New(errs.Internal, err).WithTitle("Failed to process AI query")
		}

		return chatResponse{Success: true, Response: answer}
	}
}

func recommendations(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		var req recommendationRequest
		if err := decode(r, &req); err != nil {
			return err
		}

		answer, err := cfg.Advisor.Recommend(ctx, req.exposureContext.toDomain())
		if err != nil {
			return errs.New(errs.Internal, err).WithTitle("Failed to get recommendations")
		}

		return recommendationResponse{Success: true, Recommendations: answer}
	}
}

func generatePassword(cfg Config) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		var req generateRequest
		if err := decode(r, &req); err != nil {
			return err
		}

		passwords, err := cfg.Advisor.GeneratePasswords(ctx, req.toDomain())
		if err != nil {
			return errs.New(errs.Internal, err).WithTitle("Failed to generate passwords")
		}
		if passwords == nil {
			passwords = []string{}
		}

		return generateResponse{Success: true, Passwords: passwords}
	}
}

// decode reads and validates the request body. An absent body is treated as
// an empty payload.
func decode(r *http.Request, val any) *errs.Error {
	if err := web.Decode(r, val); err != nil && !errors.Is(err, web.ErrEmptyBody) {
		return errs.New(errs.InvalidArgument, err)
	}

	if err := errs.Check(val); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	return nil
}
