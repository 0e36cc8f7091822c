// Package session holds the bearer token and login state of each browser
// session behind one read/write contract.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/manglemix/pony-express/internal/audit"
	"github.com/manglemix/pony-express/internal/client"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/query"
	"github.com/manglemix/pony-express/pkg/log"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrMissingCredentials   = errors.New("username and password are required")
)

// Authenticator is the part of the backend client that issues tokens.
type Authenticator interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
}

// Manager is the only writer of session state.
type Manager struct {
	store   Store
	auth    Authenticator
	queries *query.Cache
}

func NewManager(store Store, auth Authenticator, queries *query.Cache) *Manager {
	return &Manager{
		store:   store,
		auth:    auth,
		queries: queries,
	}
}

// Load returns the session for id. Unknown or empty ids yield a new
// anonymous session that is not stored until it logs in.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Session, error) {
	if id != "" {
		sess, err := m.store.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}
	return domain.NewSession(uuid.New().String()), nil
}

// Save persists sess.
func (m *Manager) Save(ctx context.Context, sess *domain.Session) error {
	return m.store.Save(ctx, sess)
}

// Login exchanges credentials for a token and stores it in sess.
func (m *Manager) Login(ctx context.Context, sess *domain.Session, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	tok, err := m.auth.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		if isRejection(err) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, sess.ID, username, "login rejected by backend")
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return err
	}

	// A fresh login never sees results cached under a previous token.
	m.dropQueries(ctx, sess.ID)

	sess.SignIn(tok.AccessToken)
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	audit.LogWithDetail(ctx, audit.ActionLogin, sess.ID, username, "user logged in")
	return nil
}

// Register creates an account and logs the session in with it.
func (m *Manager) Register(ctx context.Context, sess *domain.Session, username, email, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	user, err := m.auth.Register(ctx, domain.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		if isRejection(err) {
			return fmt.Errorf("%w: %w", ErrRegistrationRejected, err)
		}
		return err
	}

	audit.LogTarget(ctx, audit.ActionRegister, sess.ID, user.IDString(), "user registered")

	return m.Login(ctx, sess, username, password)
}

// Logout clears the token and forgets the session.
func (m *Manager) Logout(ctx context.Context, sess *domain.Session) error {
	sess.SignOut()
	m.dropQueries(ctx, sess.ID)

	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	audit.Log(ctx, audit.ActionLogout, sess.ID, "user logged out")
	return nil
}

func (m *Manager) dropQueries(ctx context.Context, scope string) {
	if m.queries == nil {
		return
	}
	if err := m.queries.DropScope(ctx, scope); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldSessionID, scope).Msg("failed to drop query scope")
	}
}

// isRejection reports whether the backend refused the request itself,
// as opposed to failing to serve it.
func isRejection(err error) bool {
	switch client.StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
