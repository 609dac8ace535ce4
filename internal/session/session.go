// Package session is the console's authentication gate. Login trades admin
// credentials for the upstream tokens and profile, stores them server side
// under a random session id and hands the browser a signed token naming
// that id. There is no refresh flow: a stale upstream token surfaces as a
// 401 on the next call and the session is ended.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/model"
	"github.com/iliyamo/directory-admin/internal/utils"
)

var (
	// ErrNoSession means the request carries no usable session.
	ErrNoSession = errors.New("no session")
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")
)

// Entry keys persisted per session, each as its own string value.
const (
	keyToken        = "token"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
)

// Session is an authenticated admin.
type Session struct {
	ID           string
	Token        string
	RefreshToken string
	User         model.User
}

// Repository stores session entries under an opaque key.
type Repository interface {
	Put(ctx context.Context, key string, entries map[string]string, ttl time.Duration) error
	Get(ctx context.Context, key string) (map[string]string, error)
	Delete(ctx context.Context, key string) error
}

// Authenticator performs the upstream login.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (apiclient.Credentials, error)
}

// Manager issues, resolves and ends sessions.
type Manager struct {
	auth   Authenticator
	repo   Repository
	secret string
	ttl    time.Duration
}

// NewManager wires a Manager. ttl bounds both the stored entries and the
// signed browser token.
func NewManager(auth Authenticator, repo Repository, secret string, ttl time.Duration) *Manager {
	if auth == nil || repo == nil {
		panic("nil dependency passed to session.NewManager")
	}
	return &Manager{auth: auth, repo: repo, secret: secret, ttl: ttl}
}

// Login authenticates against the upstream and persists token, refresh
// token and profile.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, utils.SessionToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, utils.SessionToken{}, ErrMissingCredentials
	}
	creds, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return Session{}, utils.SessionToken{}, err
	}

	s := Session{
		ID:           uuid.NewString(),
		Token:        creds.Token,
		RefreshToken: creds.RefreshToken,
		User:         creds.User,
	}
	profile, err := json.Marshal(s.User)
	if err != nil {
		return Session{}, utils.SessionToken{}, fmt.Errorf("encode profile: %w", err)
	}
	entries := map[string]string{
		keyToken:        s.Token,
		keyRefreshToken: s.RefreshToken,
		keyUser:         string(profile),
	}
	if err := m.repo.Put(ctx, utils.HashSessionID(s.ID), entries, m.ttl); err != nil {
		return Session{}, utils.SessionToken{}, fmt.Errorf("store session: %w", err)
	}

	tok, err := utils.NewSessionToken(m.secret, s.ID, s.User.ID.String(), s.User.Role, m.ttl)
	if err != nil {
		_ = m.repo.Delete(ctx, utils.HashSessionID(s.ID))
		return Session{}, utils.SessionToken{}, fmt.Errorf("sign session: %w", err)
	}
	return s, tok, nil
}

// Resolve verifies a browser token and loads its session. A missing,
// invalid or expired token, or a session without an access token, yields
// ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrNoSession
	}
	claims, err := utils.ParseSessionToken(m.secret, raw)
	if err != nil {
		return Session{}, ErrNoSession
	}
	entries, err := m.repo.Get(ctx, utils.HashSessionID(claims.SessionID))
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	s := Session{
		ID:           claims.SessionID,
		Token:        entries[keyToken],
		RefreshToken: entries[keyRefreshToken],
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	if p := entries[keyUser]; p != "" {
		// A profile that no longer decodes is not fatal; the token is what
		// authenticates upstream calls.
		_ = json.Unmarshal([]byte(p), &s.User)
	}
	return s, nil
}

// Logout removes every entry of the session.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.repo.Delete(ctx, utils.HashSessionID(sessionID))
}
