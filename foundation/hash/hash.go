// Package hash provides password hashing backed by bcrypt.
package hash

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamidoujand/user-service/foundation/worker"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password does not match")

// Bcrypt hashes passwords on a bounded worker pool.
type Bcrypt struct {
	cost int
	pool *worker.Pool
}

// NewBcrypt creates a hasher. A cost outside bcrypt's range is rejected.
func NewBcrypt(cost int, pool *worker.Pool) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cost %d is outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Bcrypt{
		cost: cost,
		pool: pool,
	}, nil
}

// Hash returns the bcrypt hash of plain. It waits for a pool slot, so a
// cancelled ctx never starts hashing.
func (b *Bcrypt) Hash(ctx context.Context, plain string) (string, error) {
	var hashed []byte

	err := b.pool.Do(ctx, func(ctx context.Context) error {
		h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
		if err != nil {
			return fmt.Errorf("generate from password: %w", err)
		}
		hashed = h
		return nil
	})
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify checks plain against a hash produced by Hash.
func (b *Bcrypt) Verify(hash string, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("compare: %w", err)
	}
	return nil
}
