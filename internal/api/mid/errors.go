package mid

import (
	"context"
	"net/http"
	"path"

	"github.com/ahrav/breachcheck/internal/api/errs"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/web"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged with their real cause and the
// client only ever sees the generic envelope.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			appErr := errs.GetError(err)
			if appErr == nil {
				appErr = errs.New(errs.Internal, err)
			}

			log.Error(ctx, "handled error during request",
				"request_id", web.GetRequestID(ctx),
				"err", err,
				"code", appErr.Code.String(),
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			return appErr
		}

		return h
	}

	return m
}

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}
	return nil
}
