package users

import (
	"net/http"

	"github.com/hamidoujand/user-service/foundation/web"
)

// Routes binds the user endpoints on app.
func Routes(app *web.App, version string, h *Handler) {
	app.HandleFunc(http.MethodGet, version, "/api/users/{id}", h.FindByID)
	app.HandleFunc(http.MethodGet, version, "/api/users", h.FindAll)
	app.HandleFunc(http.MethodPost, version, "/api/users", h.Save)
	app.HandleFunc(http.MethodPut, version, "/api/users/{id}", h.Update)
}
