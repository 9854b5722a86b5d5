package mid

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/hamidoujand/user-service/business/fault"
	"github.com/hamidoujand/user-service/foundation/web"
)

// Panics turns a panicking handler into an internal fault for Errors to report.
func Panics() web.Middleware {
	m := func(h web.Handler) web.Handler {
		handler := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fault.Internal(fmt.Errorf("PANIC[%v] STACK[%s]", rec, debug.Stack()))
				}
			}()

			return h(ctx, w, r)
		}

		return handler
	}
	return m
}
