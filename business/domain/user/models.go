package user

import (
	"time"
)

// User represents a user in the system.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Profiles     []Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserRequest represents all required data to create a new user in system.
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"notblank,min=3,max=50"`
	Email    string   `json:"email" validate:"notblank,email"`
	Password string   `json:"password" validate:"notblank,min=6,max=50"`
	Profiles []string `json:"profiles" validate:"required,dive,profile"`
}

// UpdateUserRequest represents the data that can be updated on a user. A nil
// field keeps the stored value.
type UpdateUserRequest struct {
	Name     *string  `json:"name" validate:"omitnil,notblank,min=3,max=50"`
	Email    *string  `json:"email" validate:"omitnil,notblank,email"`
	Password *string  `json:"password" validate:"omitnil,notblank,min=6,max=50"`
	Profiles []string `json:"profiles" validate:"omitnil,dive,profile"`
}

// UserResponse is the outbound view of a user. It carries no password material.
type UserResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Profiles []string `json:"profiles"`
}
