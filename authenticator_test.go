package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	auth "github.com/secureapi/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "sup3r-secret-pass"

func newStoredUser(t *testing.T, email string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return &auth.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        auth.NormalizeEmail(email),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    &now,
	}
}

func newTestAuther(store auth.IdentityStore) *auth.Auther {
	return auth.NewAuthenticator(store, newTestConfig()).
		WithTimeFunc(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		})
}

func TestLoginSuccess(t *testing.T) {
	user := newStoredUser(t, "peperone@example.com")

	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "peperone@example.com").Return(user, nil)
	store.On("TrackSuccessfulLogin", mock.Anything, mock.Anything).Return(nil)

	sink := &recordingSink{}
	auther := newTestAuther(store).WithActivitySink(sink)

	result := auther.Login(context.Background(), "Peperone@Example.COM ", testPassword)

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, "Login successful", result.Message)
	assert.NotEmpty(t, result.Data.Token)
	assert.Equal(t, user.ID.String(), result.Data.User.ID)
	assert.Equal(t, user.Email, result.Data.User.Email)

	subject, err := auther.Sessions().Validate(result.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), subject)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
	assert.Equal(t, user.ID.String(), events[0].UserID)

	store.AssertExpectations(t)
}

func TestLoginFailuresShareOneEnvelope(t *testing.T) {
	user := newStoredUser(t, "peperone@example.com")

	inactive := newStoredUser(t, "dormant@example.com")
	inactive.Active = false

	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, notFoundErr("ghost@example.com"))
	store.On("GetByEmail", mock.Anything, "peperone@example.com").Return(user, nil)
	store.On("GetByEmail", mock.Anything, "dormant@example.com").Return(inactive, nil)

	auther := newTestAuther(store)

	unknownEmail := auther.Login(context.Background(), "ghost@example.com", testPassword)
	wrongPassword := auther.Login(context.Background(), "peperone@example.com", "not-the-password")
	inactiveAccount := auther.Login(context.Background(), "dormant@example.com", testPassword)

	assert.False(t, unknownEmail.Success)
	assert.Equal(t, "Invalid email or password", unknownEmail.Message)
	assert.Equal(t, []string{auth.CodeAuthenticationFailed}, unknownEmail.Errors)

	// nothing in the envelope says which check failed
	assert.Equal(t, unknownEmail, wrongPassword)
	assert.Equal(t, unknownEmail, inactiveAccount)

	store.AssertNotCalled(t, "TrackSuccessfulLogin", mock.Anything, mock.Anything)
}

func TestLoginFailureReasonsStayInternal(t *testing.T) {
	user := newStoredUser(t, "peperone@example.com")

	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "peperone@example.com").Return(user, nil)

	sink := &recordingSink{}
	auther := newTestAuther(store).WithActivitySink(sink)

	auther.Login(context.Background(), "peperone@example.com", "not-the-password")

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventLoginFailure, events[0].EventType)
	assert.Equal(t, "password mismatch", events[0].Metadata["reason"])
}

func TestLoginTrackFailureStillSucceeds(t *testing.T) {
	user := newStoredUser(t, "peperone@example.com")

	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "peperone@example.com").Return(user, nil)
	store.On("TrackSuccessfulLogin", mock.Anything, mock.Anything).Return(errors.New("db write failed"))

	auther := newTestAuther(store)

	result := auther.Login(context.Background(), "peperone@example.com", testPassword)

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.NotEmpty(t, result.Data.Token)
}

func TestLoginStoreError(t *testing.T) {
	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "peperone@example.com").Return(nil, errors.New("connection refused"))

	auther := newTestAuther(store)

	result := auther.Login(context.Background(), "peperone@example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, []string{auth.CodeInternal}, result.Errors)
}

func TestRegisterSuccess(t *testing.T) {
	store := newMemoryStore()
	sink := &recordingSink{}
	auther := newTestAuther(store).WithActivitySink(sink)

	result := auther.Register(context.Background(), "New User", "New.User@Example.com", testPassword)

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, "Registration successful", result.Message)
	assert.Equal(t, "new.user@example.com", result.Data.User.Email)
	assert.NotEmpty(t, result.Data.Token)

	stored, err := store.GetByEmail(context.Background(), "new.user@example.com")
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.NotEqual(t, testPassword, stored.PasswordHash)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventRegisterSuccess, events[0].EventType)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newMemoryStore()
	store.put(newStoredUser(t, "taken@example.com"))

	auther := newTestAuther(store)

	result := auther.Register(context.Background(), "Someone", "Taken@Example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, "email already registered", result.Message)
	assert.Equal(t, []string{auth.CodeConflict}, result.Errors)
}

func TestRegisterInactiveEmailStaysTaken(t *testing.T) {
	inactive := newStoredUser(t, "dormant@example.com")
	inactive.Active = false

	store := newMemoryStore()
	store.put(inactive)

	auther := newTestAuther(store)

	result := auther.Register(context.Background(), "Someone", "dormant@example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, []string{auth.CodeConflict}, result.Errors)
}

func TestRegisterRaceLostToUniqueIndex(t *testing.T) {
	// the duplicate check misses, the insert hits the unique index
	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "raced@example.com").Return(nil, notFoundErr("raced@example.com"))
	store.On("Register", mock.Anything, mock.Anything).Return(nil, goerrorsConflict())

	auther := newTestAuther(store)

	result := auther.Register(context.Background(), "Someone", "raced@example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, "email already registered", result.Message)
	assert.Equal(t, []string{auth.CodeConflict}, result.Errors)
}

func TestRegisterStoreOutage(t *testing.T) {
	// a failed insert that is not a unique violation must not look like a
	// duplicate registration
	store := &MockIdentityStore{}
	store.On("GetByEmail", mock.Anything, "outage@example.com").Return(nil, notFoundErr("outage@example.com"))
	store.On("Register", mock.Anything, mock.Anything).
		Return(nil, goerrors.Wrap(errors.New("no such table: users"), goerrors.CategoryInternal, "could not create user"))

	auther := newTestAuther(store)

	result := auther.Register(context.Background(), "Someone", "outage@example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, "Something went wrong", result.Message)
	assert.Equal(t, []string{auth.CodeInternal}, result.Errors)
}

func TestRegisterPasswordTooLong(t *testing.T) {
	store := newMemoryStore()
	auther := newTestAuther(store)

	long := make([]byte, auth.MaxPasswordLength+1)
	for i := range long {
		long[i] = 'a'
	}

	result := auther.Register(context.Background(), "Someone", "long@example.com", string(long))

	assert.False(t, result.Success)
	assert.Equal(t, []string{auth.CodeValidation}, result.Errors)
}

func TestRegisterThenLoginFreshToken(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	auther := auth.NewAuthenticator(store, newTestConfig()).
		WithTimeFunc(func() time.Time { return clock })

	registered := auther.Register(context.Background(), "New User", "fresh@example.com", testPassword)
	require.True(t, registered.Success)

	clock = clock.Add(time.Second)

	loggedIn := auther.Login(context.Background(), "fresh@example.com", testPassword)
	require.True(t, loggedIn.Success)

	assert.NotEqual(t, registered.Data.Token, loggedIn.Data.Token)

	first, err := auther.Sessions().Validate(registered.Data.Token)
	require.NoError(t, err)
	second, err := auther.Sessions().Validate(loggedIn.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProfile(t *testing.T) {
	user := newStoredUser(t, "peperone@example.com")

	store := newMemoryStore()
	store.put(user)

	auther := newTestAuther(store)

	result := auther.Profile(context.Background(), user.ID)
	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, user.Email, result.Data.Email)

	missing := auther.Profile(context.Background(), uuid.New())
	assert.False(t, missing.Success)
	assert.Equal(t, []string{auth.CodeNotFound}, missing.Errors)
}

func TestProfileInactiveLooksMissing(t *testing.T) {
	inactive := newStoredUser(t, "dormant@example.com")
	inactive.Active = false

	store := newMemoryStore()
	store.put(inactive)

	auther := newTestAuther(store)

	gone := auther.Profile(context.Background(), inactive.ID)
	missing := auther.Profile(context.Background(), uuid.New())

	assert.False(t, gone.Success)
	assert.Equal(t, missing, gone)
}

func TestLogout(t *testing.T) {
	store := newMemoryStore()
	sink := &recordingSink{}
	auther := newTestAuther(store).WithActivitySink(sink)

	result := auther.Logout(context.Background(), "user-123")

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.True(t, *result.Data)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventLogout, events[0].EventType)
	assert.Equal(t, "user-123", events[0].UserID)
}

func TestLoginCancelledContext(t *testing.T) {
	store := &MockIdentityStore{}
	auther := newTestAuther(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := auther.Login(ctx, "peperone@example.com", testPassword)

	assert.False(t, result.Success)
	assert.Equal(t, []string{auth.CodeInternal}, result.Errors)
	store.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRegisterCancelledContext(t *testing.T) {
	store := &MockIdentityStore{}
	auther := newTestAuther(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := auther.Register(ctx, "Someone", "cancelled@example.com", testPassword)

	// no token and no store mutation on a cancelled path
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, []string{auth.CodeInternal}, result.Errors)
	store.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
