package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hamidoujand/user-service/business/database/postgres"
	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository represents set of APIs used to interact with postgres.
type Repository struct {
	client *postgres.Client
}

// NewRepository provides APIs to interact with store.
func NewRepository(pgClient *postgres.Client) *Repository {
	return &Repository{
		client: pgClient,
	}
}

// Create inserts the user with a freshly generated id and returns it.
func (r *Repository) Create(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
	INSERT INTO users
		(id,name,email,password_hash,profiles,created_at,updated_at)
	VALUES
		($1,$2,$3,$4,$5,$6,$7)
	`
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}

	pgUser, err := ToPostgresUser(usr)
	if err != nil {
		return user.User{}, err
	}

	_, err = r.client.DB.ExecContext(ctx, q,
		pgUser.Id,
		pgUser.Name,
		pgUser.Email,
		pgUser.PasswordHash,
		pgUser.Profiles,
		pgUser.CreatedAt,
		pgUser.UpdatedAt,
	)
	if err != nil {
		return user.User{}, fmt.Errorf("exec context: %w", mapError(err))
	}
	return usr, nil
}

func (r *Repository) GetById(ctx context.Context, id string) (user.User, error) {
	const q = `
	SELECT
		id,name,email,password_hash,profiles::text,created_at,updated_at
	FROM users
	WHERE id = $1
	`
	return r.queryOne(ctx, q, id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	const q = `
	SELECT
		id,name,email,password_hash,profiles::text,created_at,updated_at
	FROM users
	WHERE email = $1
	`
	return r.queryOne(ctx, q, email)
}

// GetAll returns all users ordered by creation time.
func (r *Repository) GetAll(ctx context.Context) ([]user.User, error) {
	const q = `
	SELECT
		id,name,email,password_hash,profiles::text,created_at,updated_at
	FROM users
	ORDER BY created_at, id
	`
	rows, err := r.client.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var pgUser User
		if err := scan(rows, &pgUser); err != nil {
			return nil, err
		}

		usr, err := pgUser.ToServiceUser()
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}

// Update overwrites the stored row, returns sql.ErrNoRows when id is unknown.
func (r *Repository) Update(ctx context.Context, usr user.User) error {
	pgUser, err := ToPostgresUser(usr)
	if err != nil {
		return err
	}

	const q = `
	UPDATE
		users
	SET
		name = $1,
		email = $2,
		password_hash = $3,
		profiles = $4,
		updated_at = $5
	WHERE id = $6
	`
	result, err := r.client.DB.ExecContext(ctx, q,
		pgUser.Name,
		pgUser.Email,
		pgUser.PasswordHash,
		pgUser.Profiles,
		pgUser.UpdatedAt,
		pgUser.Id,
	)
	if err != nil {
		return fmt.Errorf("execContext: %w", mapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) queryOne(ctx context.Context, q string, arg any) (user.User, error) {
	row := r.client.DB.QueryRowContext(ctx, q, arg)

	var pgUser User
	if err := scan(row, &pgUser); err != nil {
		return user.User{}, err
	}

	return pgUser.ToServiceUser()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner, pgUser *User) error {
	err := s.Scan(
		&pgUser.Id,
		&pgUser.Name,
		&pgUser.Email,
		&pgUser.PasswordHash,
		&pgUser.Profiles,
		&pgUser.CreatedAt,
		&pgUser.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}
	return nil
}

// mapError turns a unique violation into user.ErrUniqueEmail.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return user.ErrUniqueEmail
	}
	return err
}
