package user_test

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/hamidoujand/user-service/business/domain/user"
	"github.com/hamidoujand/user-service/business/domain/user/store/memory"
	"github.com/hamidoujand/user-service/business/fault"
)

type fakeHasher struct {
	err error
}

func (h fakeHasher) Hash(ctx context.Context, plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(plain))), nil
}

type fakePublisher struct {
	mu       sync.Mutex
	queues   []string
	messages [][]byte
	err      error
}

func (p *fakePublisher) DeclareQueue(name string) error {
	p.queues = append(p.queues, name)
	return nil
}

func (p *fakePublisher) Publish(ctx context.Context, queue string, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

// racyStore never sees an existing email up front, like a concurrent writer
// that won the race after the check.
type racyStore struct {
	*memory.Repository
}

func (r racyStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, sql.ErrNoRows
}

type brokenStore struct {
	*memory.Repository
}

func (b brokenStore) GetAll(ctx context.Context) ([]user.User, error) {
	return nil, errors.New("connection reset by peer")
}

func newService(t *testing.T, storer user.Storer, hasher user.Hasher, publisher user.Publisher) *user.Service {
	t.Helper()

	svc, err := user.NewService(user.Config{
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Storer:    storer,
		Hasher:    hasher,
		Publisher: publisher,
	})
	if err != nil {
		t.Fatalf("expected to create the service: %s", err)
	}
	return svc
}

func createReq() user.CreateUserRequest {
	return user.CreateUserRequest{
		Name:     "Bea",
		Email:    "testeJunit@gmail.com",
		Password: "secret",
		Profiles: []string{"ROLE_USER"},
	}
}

func assertKind(t *testing.T, err error, kind fault.Kind, message string) {
	t.Helper()

	var fe *fault.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected a *fault.Error, got %T: %v", err, err)
	}

	if fe.Kind != kind {
		t.Errorf("kind= %s, got %s", kind, fe.Kind)
	}

	if message != "" && fe.Message != message {
		t.Errorf("message= %s, got %s", message, fe.Message)
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := user.NewService(user.Config{}); err == nil {
		t.Fatalf("expected an error without collaborators")
	}
}

func TestSaveThenFind(t *testing.T) {
	repo := &memory.Repository{}
	svc := newService(t, repo, fakeHasher{}, nil)
	ctx := context.Background()
	req := createReq()

	if err := svc.Save(ctx, req); err != nil {
		t.Fatalf("expected to save: %s", err)
	}

	stored, err := repo.GetByEmail(ctx, req.Email)
	if err != nil {
		t.Fatalf("expected the user to be stored: %s", err)
	}

	for _, field := range []string{stored.ID, stored.Name, stored.Email, stored.PasswordHash} {
		if strings.Contains(field, req.Password) {
			t.Errorf("expected no stored field to contain the plaintext, got %q", field)
		}
	}

	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps to be set")
	}

	resp, err := svc.FindByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("expected to find the saved user: %s", err)
	}

	if resp.Name != req.Name || resp.Email != req.Email || len(resp.Profiles) != 1 || resp.Profiles[0] != "ROLE_USER" {
		t.Errorf("expected %+v to match %+v", resp, req)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	svc := newService(t, &memory.Repository{}, fakeHasher{}, nil)

	_, err := svc.FindByID(context.Background(), "1")
	assertKind(t, err, fault.KindNotFound, "Object not Found. id1, Type: UserResponse")
}

func TestFindAll(t *testing.T) {
	repo := &memory.Repository{}
	svc := newService(t, repo, fakeHasher{}, nil)
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		req := createReq()
		req.Email = email
		if err := svc.Save(ctx, req); err != nil {
			t.Fatalf("expected to save %s: %s", email, err)
		}
	}

	all, err := svc.FindAll(ctx)
	if err != nil {
		t.Fatalf("expected to list users: %s", err)
	}

	if len(all) != 3 {
		t.Errorf("len= %d, got %d", 3, len(all))
	}
}

func TestFindAllStoreFailure(t *testing.T) {
	svc := newService(t, brokenStore{&memory.Repository{}}, fakeHasher{}, nil)

	_, err := svc.FindAll(context.Background())
	assertKind(t, err, fault.KindInternal, "")
}

func TestSaveConflicts(t *testing.T) {
	tests := map[string]struct {
		storer func(repo *memory.Repository) user.Storer
	}{
		"detected by lookup": {
			storer: func(repo *memory.Repository) user.Storer { return repo },
		},
		"detected at write time": {
			storer: func(repo *memory.Repository) user.Storer { return racyStore{repo} },
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &memory.Repository{
				Users: map[string]user.User{
					"B": {ID: "B", Name: "Bea", Email: "testeJunit@gmail.com", PasswordHash: "H"},
				},
			}
			svc := newService(t, test.storer(repo), fakeHasher{}, nil)

			err := svc.Save(context.Background(), createReq())
			assertKind(t, err, fault.KindConflict, "Email [testeJunit@gmail.com] already exists.")

			if len(repo.Users) != 1 {
				t.Errorf("expected no duplicate to be stored, got %d users", len(repo.Users))
			}
		})
	}
}

func TestConcurrentSavesWithSameEmail(t *testing.T) {
	repo := &memory.Repository{}
	svc := newService(t, racyStore{repo}, fakeHasher{}, nil)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Save(context.Background(), createReq())
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertKind(t, err, fault.KindConflict, "")
	}

	if succeeded != 1 {
		t.Errorf("expected exactly one save to succeed, got %d", succeeded)
	}
}

func TestSaveHasherFailure(t *testing.T) {
	repo := &memory.Repository{}
	svc := newService(t, repo, fakeHasher{err: errors.New("pool exhausted")}, nil)

	err := svc.Save(context.Background(), createReq())
	assertKind(t, err, fault.KindInternal, "")

	if len(repo.Users) != 0 {
		t.Errorf("expected nothing to be stored")
	}
}

func TestSaveCancelled(t *testing.T) {
	repo := &memory.Repository{}
	svc := newService(t, repo, fakeHasher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Save(ctx, createReq()); err == nil {
		t.Fatalf("expected a cancelled save to fail")
	}

	if len(repo.Users) != 0 {
		t.Errorf("expected nothing to be stored after cancellation")
	}
}

func TestUpdate(t *testing.T) {
	tests := map[string]struct {
		id       string
		req      user.UpdateUserRequest
		kind     fault.Kind
		wantErr  bool
		wantName string
		keepHash bool
	}{
		"keeps hash without password": {
			id:       "A",
			req:      user.UpdateUserRequest{Name: ptr("Anabel")},
			wantName: "Anabel",
			keepHash: true,
		},
		"rehashes with password": {
			id:       "A",
			req:      user.UpdateUserRequest{Password: ptr("new-secret")},
			wantName: "Ana",
		},
		"own email is allowed": {
			id:       "A",
			req:      user.UpdateUserRequest{Email: ptr("a@x.io")},
			wantName: "Ana",
			keepHash: true,
		},
		"email of another user": {
			id:      "A",
			req:     user.UpdateUserRequest{Email: ptr("b@x.io")},
			wantErr: true,
			kind:    fault.KindConflict,
		},
		"unknown id": {
			id:      "Z",
			req:     user.UpdateUserRequest{Name: ptr("Zed")},
			wantErr: true,
			kind:    fault.KindNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &memory.Repository{
				Users: map[string]user.User{
					"A": {ID: "A", Name: "Ana", Email: "a@x.io", PasswordHash: "OLD", Profiles: []user.Profile{user.ProfileUser}},
					"B": {ID: "B", Name: "Bea", Email: "b@x.io", PasswordHash: "H"},
				},
			}
			svc := newService(t, repo, fakeHasher{}, nil)

			resp, err := svc.Update(context.Background(), test.id, test.req)
			if test.wantErr {
				assertKind(t, err, test.kind, "")
				return
			}

			if err != nil {
				t.Fatalf("expected the update to apply: %s", err)
			}

			if resp.ID != "A" || resp.Name != test.wantName {
				t.Errorf("unexpected response %+v", resp)
			}

			reloaded, err := repo.GetById(context.Background(), "A")
			if err != nil {
				t.Fatalf("expected to reload: %s", err)
			}

			if test.keepHash != (reloaded.PasswordHash == "OLD") {
				t.Errorf("keepHash= %t, got hash %q", test.keepHash, reloaded.PasswordHash)
			}

			if !test.keepHash && reloaded.PasswordHash == *test.req.Password {
				t.Errorf("expected the new password to be hashed")
			}

			if len(reloaded.Profiles) != 1 || reloaded.Profiles[0] != user.ProfileUser {
				t.Errorf("expected profiles to be preserved, got %v", reloaded.Profiles)
			}
		})
	}
}

func TestEventsPublished(t *testing.T) {
	repo := &memory.Repository{}
	pub := &fakePublisher{}
	svc := newService(t, repo, fakeHasher{}, pub)
	ctx := context.Background()

	if len(pub.queues) != 1 || pub.queues[0] != "queue_users" {
		t.Fatalf("expected the users queue to be declared, got %v", pub.queues)
	}

	if err := svc.Save(ctx, createReq()); err != nil {
		t.Fatalf("expected to save: %s", err)
	}

	stored, err := repo.GetByEmail(ctx, "testeJunit@gmail.com")
	if err != nil {
		t.Fatalf("expected the user to be stored: %s", err)
	}

	if _, err := svc.Update(ctx, stored.ID, user.UpdateUserRequest{Name: ptr("Beatriz")}); err != nil {
		t.Fatalf("expected to update: %s", err)
	}

	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.messages))
	}

	wantTypes := []string{user.EventCreated, user.EventUpdated}
	for i, msg := range pub.messages {
		var e user.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("expected a json event: %s", err)
		}

		if e.Type != wantTypes[i] {
			t.Errorf("type= %s, got %s", wantTypes[i], e.Type)
		}

		if e.UserID != stored.ID {
			t.Errorf("userId= %s, got %s", stored.ID, e.UserID)
		}

		if strings.Contains(string(msg), "secret") || strings.Contains(string(msg), stored.PasswordHash) {
			t.Errorf("expected no password material in events")
		}
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	repo := &memory.Repository{}
	pub := &fakePublisher{err: errors.New("channel closed")}
	svc := newService(t, repo, fakeHasher{}, pub)

	if err := svc.Save(context.Background(), createReq()); err != nil {
		t.Fatalf("expected the save to succeed despite the broker: %s", err)
	}

	if len(repo.Users) != 1 {
		t.Errorf("expected the user to be stored")
	}
}
