package auth_test

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	auth "github.com/secureapi/go-auth"
	"github.com/stretchr/testify/mock"
)

// MockIdentityStore is a testify mock over the persistence boundary.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if created, ok := args.Get(0).(*auth.User); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func notFoundErr(email string) error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithMetadata(map[string]any{"email": email})
}

func goerrorsConflict() error {
	return goerrors.New("email already registered", goerrors.CategoryConflict)
}

// recordingSink collects activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) Events() []auth.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.ActivityEvent, len(r.events))
	copy(out, r.events)
	return out
}

// memoryStore is a map-backed IdentityStore used by the end-to-end HTTP
// tests. Emails are stored normalized.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]*auth.User{}}
}

func (s *memoryStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[auth.NormalizeEmail(email)]
	if !ok {
		return nil, notFoundErr(email)
	}
	clone := *user
	return &clone, nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

func (s *memoryStore) Register(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := auth.NormalizeEmail(user.Email)
	if _, ok := s.users[key]; ok {
		return nil, goerrors.New("email already registered", goerrors.CategoryConflict)
	}
	clone := *user
	s.users[key] = &clone
	out := clone
	return &out, nil
}

func (s *memoryStore) TrackSuccessfulLogin(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.users[auth.NormalizeEmail(user.Email)]; ok {
		now := time.Now()
		stored.LoggedInAt = &now
	}
	return nil
}

func (s *memoryStore) put(user *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[auth.NormalizeEmail(user.Email)] = user
}
