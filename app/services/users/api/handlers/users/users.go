// Package users exposes the user endpoints.
package users

import (
	"context"
	"net/http"

	"github.com/hamidoujand/user-service/app/services/users/api/errs"
	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/hamidoujand/user-service/business/fault"
	"github.com/hamidoujand/user-service/foundation/web"
)

// Handler represents set of APIs used
type Handler struct {
	Validator    *errs.AppValidator
	UsersService *user.Service
}

// FindByID returns the user with the path id.
func (h *Handler) FindByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp, err := h.UsersService.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, http.StatusOK, resp)
}

// FindAll returns every user.
func (h *Handler) FindAll(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp, err := h.UsersService.FindAll(ctx)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, http.StatusOK, resp)
}

// Save creates a user and answers 201 with an empty body.
func (h *Handler) Save(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req user.CreateUserRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}

	if fields, ok := h.Validator.Check(req); !ok {
		return fault.Validation(errs.ValidationMessage, fields)
	}

	if err := h.UsersService.Save(ctx, req); err != nil {
		return err
	}

	return web.Respond(ctx, w, http.StatusCreated, nil)
}

// Update applies the non-null fields of the body to the user with the path id.
func (h *Handler) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req user.UpdateUserRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}

	if fields, ok := h.Validator.Check(req); !ok {
		return fault.Validation(errs.ValidationMessage, fields)
	}

	resp, err := h.UsersService.Update(ctx, r.PathValue("id"), req)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, http.StatusOK, resp)
}
