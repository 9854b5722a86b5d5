package mid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hamidoujand/user-service/business/fault"
	"github.com/hamidoujand/user-service/foundation/web"
)

// Timeout bounds the request ctx by d. A handler that gives up on the deadline
// is reported as an internal fault so Errors writes the usual envelope.
func Timeout(d time.Duration) web.Middleware {
	m := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			err := h(ctx, w, r.WithContext(ctx))
			if err != nil && ctx.Err() != nil && fault.KindOf(err) == fault.KindInternal {
				return fault.Internal(fmt.Errorf("request deadline: %w", err))
			}
			return err
		}
		return handler
	}
	return m
}
