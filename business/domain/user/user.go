package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamidoujand/user-service/business/fault"
)

const publishTimeout = 5 * time.Second

// ErrUniqueEmail is returned by stores when a write would duplicate an email.
var ErrUniqueEmail = errors.New("email is already in use")

// Storer is the persistence the service depends on. Stores report a missing
// user with sql.ErrNoRows and a duplicated email with ErrUniqueEmail.
type Storer interface {
	Create(ctx context.Context, usr User) (User, error)
	Update(ctx context.Context, usr User) error
	GetById(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
}

// Hasher turns a plaintext password into an opaque hash.
type Hasher interface {
	Hash(ctx context.Context, plain string) (string, error)
}

// Config holds the collaborators of the service. Publisher is optional.
type Config struct {
	Log       *slog.Logger
	Storer    Storer
	Hasher    Hasher
	Publisher Publisher
}

// Service represents the set of APIs that needed to interact with user domain.
type Service struct {
	log       *slog.Logger
	storer    Storer
	hasher    Hasher
	publisher Publisher
}

// NewService creates a *Service and declares the users queue when a publisher
// is configured.
func NewService(conf Config) (*Service, error) {
	if conf.Log == nil || conf.Storer == nil || conf.Hasher == nil {
		return nil, errors.New("log, storer and hasher are required")
	}

	if conf.Publisher != nil {
		if err := conf.Publisher.DeclareQueue(queueUsers); err != nil {
			return nil, fmt.Errorf("declare queue: %w", err)
		}
	}

	return &Service{
		log:       conf.Log,
		storer:    conf.Storer,
		hasher:    conf.Hasher,
		publisher: conf.Publisher,
	}, nil
}

// FindByID returns the user with id or a NotFound fault.
func (s *Service) FindByID(ctx context.Context, id string) (UserResponse, error) {
	usr, err := s.storer.GetById(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserResponse{}, notFound(id)
		}
		return UserResponse{}, fault.Internal(fmt.Errorf("get by id: %w", err))
	}

	return FromEntity(usr), nil
}

// FindAll returns every user in store order.
func (s *Service) FindAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.storer.GetAll(ctx)
	if err != nil {
		return nil, fault.Internal(fmt.Errorf("get all: %w", err))
	}

	return FromEntities(users), nil
}

// Save creates a user out of req. The plaintext password is only handed to the
// hasher.
func (s *Service) Save(ctx context.Context, req CreateUserRequest) error {
	if err := s.verifyEmailUnique(ctx, req.Email, ""); err != nil {
		return err
	}

	usr := FromRequest(req)

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return fault.Internal(fmt.Errorf("hash: %w", err))
	}
	usr.PasswordHash = hash

	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now

	//nothing is written once the request is gone
	if err := ctx.Err(); err != nil {
		return fault.Internal(fmt.Errorf("before create: %w", err))
	}

	created, err := s.storer.Create(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrUniqueEmail) {
			return emailConflict(usr.Email)
		}
		return fault.Internal(fmt.Errorf("create: %w", err))
	}

	s.announce(ctx, EventCreated, created)
	return nil
}

// Update applies the non-nil fields of req to the user with id. The stored
// password hash is kept unless req carries a password.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	existing, err := s.storer.GetById(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserResponse{}, notFound(id)
		}
		return UserResponse{}, fault.Internal(fmt.Errorf("get by id: %w", err))
	}

	if req.Email != nil {
		if err := s.verifyEmailUnique(ctx, *req.Email, existing.ID); err != nil {
			return UserResponse{}, err
		}
	}

	usr := ApplyUpdate(req, existing)

	if req.Password != nil {
		hash, err := s.hasher.Hash(ctx, *req.Password)
		if err != nil {
			return UserResponse{}, fault.Internal(fmt.Errorf("hash: %w", err))
		}
		usr.PasswordHash = hash
	}

	usr.UpdatedAt = time.Now().UTC()

	if err := ctx.Err(); err != nil {
		return UserResponse{}, fault.Internal(fmt.Errorf("before update: %w", err))
	}

	if err := s.storer.Update(ctx, usr); err != nil {
		switch {
		case errors.Is(err, ErrUniqueEmail):
			return UserResponse{}, emailConflict(usr.Email)
		case errors.Is(err, sql.ErrNoRows):
			return UserResponse{}, notFound(id)
		}
		return UserResponse{}, fault.Internal(fmt.Errorf("update: %w", err))
	}

	s.announce(ctx, EventUpdated, usr)
	return FromEntity(usr), nil
}

// verifyEmailUnique fails with a Conflict when email belongs to a user other
// than referenceID. An empty referenceID exempts nobody.
func (s *Service) verifyEmailUnique(ctx context.Context, email string, referenceID string) error {
	usr, err := s.storer.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fault.Internal(fmt.Errorf("get by email: %w", err))
	}

	if usr.ID != referenceID {
		return emailConflict(email)
	}
	return nil
}

// announce publishes a change event. The write already happened, so a broker
// failure is only logged.
func (s *Service) announce(ctx context.Context, eventType string, usr User) {
	if s.publisher == nil {
		return
	}

	//the request may already be cancelled, the event still belongs to the write
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publishEvent(ctx, s.publisher, eventType, usr); err != nil {
		s.log.WarnContext(ctx, "publishing user event", "type", eventType, "userId", usr.ID, "err", err)
	}
}

func notFound(id string) error {
	return fault.NotFound("Object not Found. id%s, Type: UserResponse", id)
}

func emailConflict(email string) error {
	return fault.Conflict("Email [%s] already exists.", email)
}
