// Package web is a small framework over http.ServeMux whose handlers return
// errors instead of writing them.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Handler is the signature every route implements.
type Handler func(context.Context, http.ResponseWriter, *http.Request) error

// App is the entrypoint into the application, it owns the mux and the
// middlewares applied to every route.
type App struct {
	mux  *http.ServeMux
	mids []Middleware
}

// NewApp creates an App that wraps every route with mids, the first one being
// the outermost.
func NewApp(mids ...Middleware) *App {
	return &App{
		mux:  http.NewServeMux(),
		mids: mids,
	}
}

// HandleFunc registers handler for method and path, wrapped by the route mids
// and then the app mids.
func (a *App) HandleFunc(method string, version string, path string, handler Handler, mids ...Middleware) {
	handler = applyMiddlewares(handler, mids...)
	handler = applyMiddlewares(handler, a.mids...)

	h := func(w http.ResponseWriter, r *http.Request) {
		rm := requestMetadata{
			StartedAt: time.Now(),
			RequestId: uuid.New(),
		}
		ctx := injectRequestMetadata(r.Context(), &rm)

		w.Header().Set("X-Request-Id", rm.RequestId.String())

		//errors reaching this point could not be written by the middlewares
		if err := handler(ctx, w, r.WithContext(ctx)); err != nil {
			if GetStatusCode(ctx) == 0 {
				w.WriteHeader(http.StatusInternalServerError)
			}
		}
	}

	a.mux.HandleFunc(pattern(method, version, path), h)
}

// Handle mounts a plain http.Handler that bypasses the app middlewares.
func (a *App) Handle(method string, version string, path string, h http.Handler) {
	a.mux.Handle(pattern(method, version, path), h)
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func pattern(method string, version string, path string) string {
	finalPath := path
	if version != "" {
		finalPath = "/" + version + path
	}
	//an empty method matches every method
	if method == "" {
		return finalPath
	}
	return fmt.Sprintf("%s %s", method, finalPath)
}
