// Package usercache wraps a user store with a redis read-through cache for
// lookups by id.
package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	entity      = "users"
	loadTimeout = 5 * time.Second
)

// Store caches GetById results and invalidates them on Update. Every other
// call goes straight to the wrapped store.
type Store struct {
	log    *slog.Logger
	storer user.Storer
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group

	//gen is bumped on every update, a load that saw another gen is not cached.
	mu  sync.Mutex
	gen uint64
}

// NewStore constructs a cache in front of storer.
func NewStore(log *slog.Logger, storer user.Storer, client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		log:    log,
		storer: storer,
		client: client,
		ttl:    ttl,
	}
}

// cached is the redis representation of a user.
type cached struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Profiles     []string  `json:"profiles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCached(usr user.User) cached {
	return cached{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		Profiles:     user.EncodeProfiles(usr.Profiles),
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
}

func (c cached) toUser() (user.User, error) {
	profiles, err := user.ParseProfiles(c.Profiles)
	if err != nil {
		return user.User{}, err
	}

	return user.User{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Profiles:     profiles,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}

func key(id string) string {
	return entity + ":" + id
}

// GetById serves the user from redis when present, otherwise loads it from the
// wrapped store once per concurrent burst and caches it. Redis failures fall
// back to the store.
func (s *Store) GetById(ctx context.Context, id string) (user.User, error) {
	if usr, ok := s.lookup(ctx, id); ok {
		return usr, nil
	}

	//the load is shared, so it must not die with whichever caller started it
	ch := s.group.DoChan(key(id), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		gen := s.generation()

		usr, err := s.storer.GetById(ctx, id)
		if err != nil {
			return user.User{}, err
		}

		s.storeIfCurrent(ctx, usr, gen)
		return usr, nil
	})

	select {
	case <-ctx.Done():
		return user.User{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return user.User{}, res.Err
		}
		return res.Val.(user.User), nil
	}
}

// Update writes through and drops the cached entry. Loads already in flight
// for the user are neither cached nor joined by later lookups.
func (s *Store) Update(ctx context.Context, usr user.User) error {
	if err := s.storer.Update(ctx, usr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.group.Forget(key(usr.ID))

	if err := s.client.Del(ctx, key(usr.ID)).Err(); err != nil {
		//a stale entry must not outlive the write
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, usr user.User) (user.User, error) {
	return s.storer.Create(ctx, usr)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.storer.GetByEmail(ctx, email)
}

func (s *Store) GetAll(ctx context.Context) ([]user.User, error) {
	return s.storer.GetAll(ctx)
}

func (s *Store) lookup(ctx context.Context, id string) (user.User, bool) {
	bs, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "usercache get", "userId", id, "err", err)
		}
		return user.User{}, false
	}

	var c cached
	if err := json.Unmarshal(bs, &c); err != nil {
		s.log.WarnContext(ctx, "usercache decode", "userId", id, "err", err)
		return user.User{}, false
	}

	usr, err := c.toUser()
	if err != nil {
		s.log.WarnContext(ctx, "usercache decode", "userId", id, "err", err)
		return user.User{}, false
	}
	return usr, true
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// storeIfCurrent caches usr unless an update happened since gen was read. The
// lock is held across the write so an update cannot slip in between.
func (s *Store) storeIfCurrent(ctx context.Context, usr user.User, gen uint64) {
	bs, err := json.Marshal(toCached(usr))
	if err != nil {
		s.log.WarnContext(ctx, "usercache encode", "userId", usr.ID, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}

	if err := s.client.Set(ctx, key(usr.ID), bs, s.ttl).Err(); err != nil {
		s.log.WarnContext(ctx, "usercache set", "userId", usr.ID, "err", err)
	}
}
