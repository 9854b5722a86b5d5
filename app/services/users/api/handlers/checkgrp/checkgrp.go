// Package checkgrp provides the liveness and readiness endpoints.
package checkgrp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hamidoujand/user-service/foundation/web"
)

const readinessTimeout = time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Handler serves the health endpoints.
type Handler struct {
	Log    *slog.Logger
	Checks map[string]Check
}

type status struct {
	Status string `json:"status"`
}

// Liveness answers as long as the process serves http.
func (h *Handler) Liveness(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, http.StatusOK, status{Status: "ok"})
}

// Readiness runs every check within a shared deadline and answers 503 when
// any of them fails.
func (h *Handler) Readiness(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			h.Log.WarnContext(ctx, "readiness", "dependency", name, "err", err)
			return web.Respond(ctx, w, http.StatusServiceUnavailable, status{Status: "not ready"})
		}
	}

	return web.Respond(ctx, w, http.StatusOK, status{Status: "ready"})
}

// Routes binds the health endpoints on app.
func Routes(app *web.App, h *Handler) {
	app.HandleFunc(http.MethodGet, "", "/healthz", h.Liveness)
	app.HandleFunc(http.MethodGet, "", "/readyz", h.Readiness)
}
