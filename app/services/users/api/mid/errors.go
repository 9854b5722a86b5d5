package mid

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/hamidoujand/user-service/app/services/users/api/errs"
	"github.com/hamidoujand/user-service/business/fault"
	"github.com/hamidoujand/user-service/foundation/web"
)

// Errors is a middleware used to do the error handling of the routes.
func Errors(logger *slog.Logger) web.Middleware {
	m := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := h(ctx, w, r)
			if err == nil {
				return nil
			}

			attrs := []any{"message", err.Error(), "kind", fault.KindOf(err).String()}

			var fe *fault.Error
			if errors.As(err, &fe) {
				attrs = append(attrs,
					"sourceFile", filepath.Base(fe.FileName),
					"functionName", filepath.Base(fe.FuncName),
				)
			}

			logger.ErrorContext(ctx, "handling error during request", attrs...)

			appErr := errs.Translate(err, r.URL.Path)

			if err := web.Respond(ctx, w, appErr.Status, appErr); err != nil {
				return err
			}
			return nil
		}
		return handler
	}
	return m
}
