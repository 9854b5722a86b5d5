// Package memory provides a in memory repository used for testing.
package memory

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hamidoujand/user-service/business/domain/user"
)

// Repository keeps users in a map keyed by id. The zero value is ready to use.
type Repository struct {
	Users map[string]user.User
	mu    sync.Mutex
}

// Create assigns an id when missing and adds the user, returning
// user.ErrUniqueEmail when the email is taken.
func (r *Repository) Create(ctx context.Context, usr user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Users == nil {
		r.Users = make(map[string]user.User)
	}

	if r.emailTaken(usr.Email, "") {
		return user.User{}, user.ErrUniqueEmail
	}

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}

	r.Users[usr.ID] = clone(usr)
	return clone(usr), nil
}

// GetById queries the repo for user with id and returns sql.ErrNoRows if there is not user.
func (r *Repository) GetById(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	usr, ok := r.Users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return clone(usr), nil
}

// Update replaces the stored user.
func (r *Repository) Update(ctx context.Context, usr user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Users[usr.ID]; !ok {
		return sql.ErrNoRows
	}

	if r.emailTaken(usr.Email, usr.ID) {
		return user.ErrUniqueEmail
	}

	r.Users[usr.ID] = clone(usr)
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, usr := range r.Users {
		if usr.Email == email {
			return clone(usr), nil
		}
	}
	return user.User{}, sql.ErrNoRows
}

// GetAll returns every user ordered by creation time, then id.
func (r *Repository) GetAll(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]user.User, 0, len(r.Users))
	for _, usr := range r.Users {
		users = append(users, clone(usr))
	}

	slices.SortFunc(users, func(a, b user.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return users, nil
}

func (r *Repository) emailTaken(email string, exceptID string) bool {
	for id, usr := range r.Users {
		if usr.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

// clone detaches the profiles slice from the caller's copy.
func clone(usr user.User) user.User {
	usr.Profiles = slices.Clone(usr.Profiles)
	return usr
}
