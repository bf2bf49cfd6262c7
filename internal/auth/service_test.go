package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
	"github.com/hongminglow/account-be/internal/storage/memory"
)

func newTestService(store storage.UserStore) *Service {
	tokens := NewTokenManager("test-secret", "account-test", time.Hour)
	return NewService(store, tokens, slog.New(slog.DiscardHandler), bcrypt.MinCost)
}

// failingStore reports err from every call.
type failingStore struct {
	err error
}

func (f failingStore) CreateUser(context.Context, models.User) (models.User, error) {
	return models.User{}, f.err
}
func (f failingStore) FindByUsername(context.Context, string) (models.User, error) {
	return models.User{}, f.err
}
func (f failingStore) FindByID(context.Context, string) (models.User, error) {
	return models.User{}, f.err
}
func (f failingStore) SaveUser(context.Context, models.User) error { return f.err }
func (f failingStore) Close()                                      {}

// racingStore hides existing users from FindByUsername to mimic a concurrent registration.
type racingStore struct {
	*memory.Store
}

func (r racingStore) FindByUsername(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrNotFound
}

// saveFailingStore accepts new users but cannot persist their tokens.
type saveFailingStore struct {
	*memory.Store
	err error
}

func (s saveFailingStore) SaveUser(context.Context, models.User) error { return s.err }

func TestRegisterLongestPassword(t *testing.T) {
	svc := newTestService(memory.NewUserStore())
	password := strings.Repeat("x", MaxPasswordBytes)

	_, err := svc.Register(context.Background(), "alice", password, false)
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "alice", password)
	assert.NoError(t, err)
}

func TestRegisterSessionFailureLogsUser(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("write timeout")
	store := saveFailingStore{Store: memory.NewUserStore(), err: boom}

	var buf bytes.Buffer
	tokens := NewTokenManager("test-secret", "account-test", time.Hour)
	svc := NewService(store, tokens, slog.New(slog.NewTextHandler(&buf, nil)), bcrypt.MinCost)

	_, err := svc.Register(ctx, "alice", "p1", false)
	assert.ErrorIs(t, err, boom)

	created, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "registered user has no session")
	assert.Contains(t, buf.String(), "user_id="+created.ID)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := newTestService(store)

	session, err := svc.Register(ctx, "  alice ", "p1", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.User.Username)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "p1", session.User.PasswordHash)

	stored, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, session.Token, stored.CurrentToken)
	assert.True(t, stored.MatchPassword("p1"))
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(memory.NewUserStore())

	_, err := svc.Register(ctx, "alice", "p1", false)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "other", true)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRegisterDuplicateCaughtByStore(t *testing.T) {
	ctx := context.Background()
	store := racingStore{Store: memory.NewUserStore()}
	svc := newTestService(store)

	_, err := svc.Register(ctx, "alice", "p1", false)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "p2", false)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRegisterInvalidInput(t *testing.T) {
	svc := newTestService(memory.NewUserStore())
	for _, tc := range []struct{ username, password string }{
		{"", "p1"},
		{"   ", "p1"},
		{"alice", ""},
		{"alice", strings.Repeat("x", MaxPasswordBytes+1)},
	} {
		_, err := svc.Register(context.Background(), tc.username, tc.password, false)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := newTestService(store)

	registered, err := svc.Register(ctx, "alice", "p1", false)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "p1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	session, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotEqual(t, registered.Token, session.Token)

	stored, err := store.FindByID(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Token, stored.CurrentToken)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(memory.NewUserStore())

	first, err := svc.Register(ctx, "alice", "p1", true)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, user.ID)
	assert.True(t, user.IsAdmin)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	second, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "superseded token should be rejected")
	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService(memory.NewUserStore())
	token, err := svc.tokens.Generate(models.User{ID: "ghost"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := newTestService(store)

	session, err := svc.Register(ctx, "alice", "p1", false)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	stored, err := store.FindByID(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CurrentToken)

	assert.ErrorIs(t, svc.Logout(ctx, session.Token), ErrInvalidToken)
	assert.ErrorIs(t, svc.Logout(ctx, ""), ErrMissingToken)
}

func TestStoreFailuresAreNotMasked(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	svc := newTestService(failingStore{err: boom})

	_, err := svc.Register(ctx, "alice", "p1", false)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Login(ctx, "alice", "p1")
	assert.ErrorIs(t, err, boom)

	token, err := svc.tokens.Generate(models.User{ID: "u-1"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
