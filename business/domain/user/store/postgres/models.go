package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hamidoujand/user-service/business/domain/user"
)

// User is the row shape of the users table. Profiles travel as the text form
// of the jsonb column.
type User struct {
	Id           string
	Name         string
	Email        string
	PasswordHash string
	Profiles     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToPostgresUser creates a User that will be saved inside of postgres.
func ToPostgresUser(u user.User) (User, error) {
	profiles, err := json.Marshal(user.EncodeProfiles(u.Profiles))
	if err != nil {
		return User{}, fmt.Errorf("marshal profiles: %w", err)
	}

	return User{
		Id:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Profiles:     string(profiles),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

// ToServiceUser converts a row back into the domain user.
func (u User) ToServiceUser() (user.User, error) {
	var names []string
	if err := json.Unmarshal([]byte(u.Profiles), &names); err != nil {
		return user.User{}, fmt.Errorf("unmarshal profiles: %w", err)
	}

	profiles, err := user.ParseProfiles(names)
	if err != nil {
		return user.User{}, fmt.Errorf("parse profiles: %w", err)
	}

	return user.User{
		ID:           u.Id,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Profiles:     profiles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}
