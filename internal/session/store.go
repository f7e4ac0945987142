package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leavesystem/leavectl/internal/client"
	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
	"github.com/leavesystem/leavectl/pkg/logger"
)

// The session is persisted under two fixed keys in the state directory.
// Both are always written together and removed together so a token can
// never outlive its user snapshot or vice versa.
const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Authenticator exchanges credentials with the backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*client.Credentials, error)
}

// CredentialSink receives the current bearer token whenever it changes.
type CredentialSink interface {
	SetToken(token string)
}

// State is the observable session state. IsAuthenticated is derived, never
// stored, so the two can't drift apart.
type State struct {
	User        *domain.User
	Token       string
	Initialized bool
}

// IsAuthenticated reports whether both a token and a user are present.
func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store holds the authenticated principal, persists it across runs, and
// keeps the outbound credential in sync with it.
type Store struct {
	dir  string
	auth Authenticator
	sink CredentialSink
	log  *logger.Logger

	mu          sync.RWMutex
	user        *domain.User
	token       string
	initialized bool
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string, auth Authenticator, sink CredentialSink, log *logger.Logger) *Store {
	return &Store{dir: dir, auth: auth, sink: sink, log: log}
}

// Initialize restores a previously persisted session, if any. It must
// complete before any role-gated decision is made; callers treat it as a
// synchronization barrier. A missing session is not an error. Calling it
// again is a no-op.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.initialized = true

	token, user, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			// A torn or unreadable session is cleared rather than trusted.
			s.log.Warn().Err(err).Msg("Discarding unreadable persisted session")
			s.removeLocked()
		}
		s.sink.SetToken("")
		return nil
	}

	if tokenExpired(token) {
		s.log.Info().Msg("Persisted session token has expired, clearing")
		s.removeLocked()
		s.sink.SetToken("")
		return nil
	}

	s.token = token
	s.user = user
	s.sink.SetToken(token)
	s.log.Debug().Str("username", user.Username).Str("role", string(user.Role)).Msg("Session restored")
	return nil
}

// Login exchanges credentials, persists the resulting session, and updates
// the outbound credential.
func (s *Store) Login(ctx context.Context, username, password string) (*domain.User, error) {
	creds, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(creds.Token, &creds.User); err != nil {
		// Never leave half a session on disk.
		s.removeLocked()
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.token = creds.Token
	user := creds.User
	s.user = &user
	s.sink.SetToken(creds.Token)

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("Login successful")
	return &user, nil
}

// Logout clears the session unconditionally. It never fails: a missing
// persisted session is already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked()
	s.token = ""
	s.user = nil
	s.sink.SetToken("")
	s.log.Info().Msg("Logged out")
}

// State returns a snapshot of the observable session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{User: s.user, Token: s.token, Initialized: s.initialized}
}

// Current returns the authenticated principal, or an error when there is
// none.
func (s *Store) Current() (*domain.User, error) {
	st := s.State()
	if !st.IsAuthenticated() {
		return nil, apperrors.Unauthorized("not logged in")
	}
	return st.User, nil
}

func (s *Store) read() (string, *domain.User, error) {
	tokenBytes, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return "", nil, err
	}
	userBytes, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return "", nil, err
	}

	token := strings.TrimSpace(string(tokenBytes))
	var user domain.User
	if err := json.Unmarshal(userBytes, &user); err != nil {
		return "", nil, fmt.Errorf("corrupt user snapshot: %w", err)
	}
	if token == "" || user.ID == "" {
		return "", nil, errors.New("incomplete persisted session")
	}
	return token, &user, nil
}

func (s *Store) write(token string, user *domain.User) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, userFile), userBytes, 0o600)
}

func (s *Store) removeLocked() {
	os.Remove(filepath.Join(s.dir, tokenFile))
	os.Remove(filepath.Join(s.dir, userFile))
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; the client holds no key, and the backend remains the
// authority. Tokens that don't parse as JWTs or carry no exp are kept.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
