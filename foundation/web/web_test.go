package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hamidoujand/user-service/foundation/web"
)

func TestMiddlewareOrder(t *testing.T) {
	var calls []string

	mid := func(name string) web.Middleware {
		return func(h web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				calls = append(calls, name)
				return h(ctx, w, r)
			}
		}
	}

	app := web.NewApp(mid("app1"), mid("app2"))
	app.HandleFunc(http.MethodGet, "", "/ping", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		calls = append(calls, "handler")
		return web.Respond(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
	}, mid("route"))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	want := "app1,app2,route,handler"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("calls= %s, got %s", want, got)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status= %d, got %d", http.StatusOK, w.Code)
	}

	if _, err := uuid.Parse(w.Header().Get("X-Request-Id")); err != nil {
		t.Errorf("expected a request id header: %s", err)
	}
}

func TestVersionedPath(t *testing.T) {
	app := web.NewApp()
	app.HandleFunc(http.MethodGet, "v1", "/ping", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status= %d, got %d", http.StatusOK, w.Code)
	}
}

func TestAnyMethod(t *testing.T) {
	app := web.NewApp()
	app.HandleFunc("", "", "/", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, http.StatusTeapot, nil)
	})

	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPatch} {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(method, "/anything/at/all", nil))

		if w.Code != http.StatusTeapot {
			t.Errorf("%s: status= %d, got %d", method, http.StatusTeapot, w.Code)
		}
	}
}

func TestRespondWithoutBody(t *testing.T) {
	app := web.NewApp()
	app.HandleFunc(http.MethodPost, "", "/things", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, http.StatusCreated, nil)
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things", nil))

	if w.Code != http.StatusCreated {
		t.Errorf("status= %d, got %d", http.StatusCreated, w.Code)
	}

	if w.Body.Len() != 0 {
		t.Errorf("expected an empty body, got %q", w.Body.String())
	}
}

func TestUnhandledError(t *testing.T) {
	app := web.NewApp()
	app.HandleFunc(http.MethodGet, "", "/broken", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("nobody handled me")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status= %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestMetadataOutsideRequest(t *testing.T) {
	ctx := context.Background()

	if web.GetStatusCode(ctx) != 0 {
		t.Errorf("expected no status code outside a request")
	}

	if web.GetRequestId(ctx) != uuid.Nil {
		t.Errorf("expected no request id outside a request")
	}
}
