package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hamidoujand/user-service/app/services/users/api/errs"
	"github.com/hamidoujand/user-service/app/services/users/api/handlers/checkgrp"
	"github.com/hamidoujand/user-service/app/services/users/api/handlers/users"
	"github.com/hamidoujand/user-service/app/services/users/api/mid"
	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/hamidoujand/user-service/business/fault"
	"github.com/hamidoujand/user-service/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds everything the routes depend on.
type Config struct {
	Logger       *slog.Logger
	Validator    *errs.AppValidator
	UsersService *user.Service
	Registry     *prometheus.Registry
	Checks       map[string]checkgrp.Check

	// RequestTimeout bounds every request ctx, zero disables it.
	RequestTimeout time.Duration
}

// RegisterRoutes builds the app with every endpoint of the service.
func RegisterRoutes(conf Config) (*web.App, error) {
	//==============================================================================
	//setup
	metrics, err := mid.NewMetrics(conf.Registry)
	if err != nil {
		return nil, err
	}

	mids := []web.Middleware{
		mid.Logger(conf.Logger),
		metrics.Middleware(),
		mid.Errors(conf.Logger),
		mid.Panics(),
	}
	if conf.RequestTimeout > 0 {
		mids = append(mids, mid.Timeout(conf.RequestTimeout))
	}

	app := web.NewApp(mids...)

	//==============================================================================
	//users
	users.Routes(app, "", &users.Handler{
		Validator:    conf.Validator,
		UsersService: conf.UsersService,
	})

	//==============================================================================
	//operations
	checkgrp.Routes(app, &checkgrp.Handler{
		Log:    conf.Logger,
		Checks: conf.Checks,
	})

	app.Handle(http.MethodGet, "", "/metrics", promhttp.HandlerFor(conf.Registry, promhttp.HandlerOpts{}))

	//anything the mux cannot route still gets the error envelope
	app.HandleFunc("", "", "/", noRoute)

	return app, nil
}

func noRoute(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return fault.NotFound("No handler found for %s %s", r.Method, r.URL.Path)
}
