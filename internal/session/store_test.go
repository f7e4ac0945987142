package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavesystem/leavectl/internal/client"
	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/logger"
)

type fakeAuth struct {
	creds *client.Credentials
	err   error
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*client.Credentials, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.creds, nil
}

type fakeSink struct {
	tokens []string
}

func (f *fakeSink) SetToken(token string) { f.tokens = append(f.tokens, token) }

func (f *fakeSink) last() string {
	if len(f.tokens) == 0 {
		return "<never set>"
	}
	return f.tokens[len(f.tokens)-1]
}

func testUser() domain.User {
	return domain.User{ID: "u1", Username: "dana", Name: "Dana Reed", Role: domain.RoleManager}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestIsAuthenticatedDerivation(t *testing.T) {
	user := testUser()
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"token and user", State{Token: "tok", User: &user}, true},
		{"token only", State{Token: "tok"}, false},
		{"user only", State{User: &user}, false},
		{"neither", State{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsAuthenticated())
		})
	}
}

func TestInitializeWithoutPersistedSession(t *testing.T) {
	sink := &fakeSink{}
	store := NewStore(t.TempDir(), &fakeAuth{}, sink, logger.Nop())

	require.NoError(t, store.Initialize())

	st := store.State()
	assert.True(t, st.Initialized)
	assert.False(t, st.IsAuthenticated())
	assert.Equal(t, "", sink.last(), "credential must be explicitly cleared")
}

func TestLoginPersistsAndRestores(t *testing.T) {
	dir := t.TempDir()
	user := testUser()
	token := signedToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuth{creds: &client.Credentials{Token: token, User: user}}
	sink := &fakeSink{}

	store := NewStore(dir, auth, sink, logger.Nop())
	require.NoError(t, store.Initialize())

	got, err := store.Login(context.Background(), "dana", "password123")
	require.NoError(t, err)
	assert.Equal(t, "dana", got.Username)
	assert.Equal(t, token, sink.last())
	assert.True(t, store.State().IsAuthenticated())

	// A fresh store over the same directory rehydrates the session.
	sink2 := &fakeSink{}
	store2 := NewStore(dir, &fakeAuth{}, sink2, logger.Nop())
	require.NoError(t, store2.Initialize())

	st := store2.State()
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, "dana", st.User.Username)
	assert.Equal(t, domain.RoleManager, st.User.Role)
	assert.Equal(t, token, sink2.last())
}

func TestInitializeDiscardsExpiredToken(t *testing.T) {
	dir := t.TempDir()
	user := testUser()
	token := signedToken(t, time.Now().Add(-time.Minute))
	auth := &fakeAuth{creds: &client.Credentials{Token: token, User: user}}

	store := NewStore(dir, auth, &fakeSink{}, logger.Nop())
	require.NoError(t, store.Initialize())
	_, err := store.Login(context.Background(), "dana", "password123")
	require.NoError(t, err)

	store2 := NewStore(dir, &fakeAuth{}, &fakeSink{}, logger.Nop())
	require.NoError(t, store2.Initialize())
	assert.False(t, store2.State().IsAuthenticated())

	// The expired pair is gone from disk, not just ignored.
	_, err = os.Stat(filepath.Join(dir, tokenFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInitializeDiscardsTornSession(t *testing.T) {
	dir := t.TempDir()
	// Token present, user snapshot missing: a mismatch that must not be
	// treated as a live session.
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFile), []byte("tok"), 0o600))

	sink := &fakeSink{}
	store := NewStore(dir, &fakeAuth{}, sink, logger.Nop())
	require.NoError(t, store.Initialize())

	assert.False(t, store.State().IsAuthenticated())
	assert.Equal(t, "", sink.last())
	_, err := os.Stat(filepath.Join(dir, tokenFile))
	assert.True(t, errors.Is(err, os.ErrNotExist), "torn session must be removed")
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{err: errors.New("invalid credentials")}
	store := NewStore(dir, auth, &fakeSink{}, logger.Nop())
	require.NoError(t, store.Initialize())

	_, err := store.Login(context.Background(), "dana", "wrong")
	require.Error(t, err)
	assert.False(t, store.State().IsAuthenticated())
	_, err = os.Stat(filepath.Join(dir, tokenFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLogoutClearsEverything(t *testing.T) {
	dir := t.TempDir()
	user := testUser()
	token := signedToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuth{creds: &client.Credentials{Token: token, User: user}}
	sink := &fakeSink{}

	store := NewStore(dir, auth, sink, logger.Nop())
	require.NoError(t, store.Initialize())
	_, err := store.Login(context.Background(), "dana", "password123")
	require.NoError(t, err)

	store.Logout()

	assert.False(t, store.State().IsAuthenticated())
	assert.Equal(t, "", sink.last())
	_, err = os.Stat(filepath.Join(dir, userFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Logging out twice is fine.
	store.Logout()
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir(), &fakeAuth{}, &fakeSink{}, logger.Nop())
	require.NoError(t, store.Initialize())
	require.NoError(t, store.Initialize())
	assert.True(t, store.State().Initialized)
}
