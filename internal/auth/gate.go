// Package auth is the placeholder login gate in front of the studio. Any
// non-empty email and password, or any Google credential, is accepted and
// opens a fresh studio session. Nothing is verified.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/lehigh-university-libraries/idealab/internal/session"
	"github.com/lehigh-university-libraries/idealab/internal/storage"
)

var (
	ErrMissingCredentials = errors.New("Please enter both email and password.")
	ErrMissingCredential  = errors.New("Google credential is required")
)

type Method string

const (
	MethodPassword Method = "password"
	MethodGoogle   Method = "google"
)

// Login is the result of a successful sign-in
type Login struct {
	SessionID string `json:"session_id"`
	Method    Method `json:"method"`
	Email     string `json:"email,omitempty"`

	View *session.View `json:"-"`
}

// SessionTTL is how long an untouched session survives. It matches the cookie lifetime.
const SessionTTL = 24 * time.Hour

// Gate issues studio sessions
type Gate struct {
	store *storage.SessionStore
	gen   session.Generator
	now   func() time.Time
}

func NewGate(store *storage.SessionStore, gen session.Generator) *Gate {
	return &Gate{store: store, gen: gen, now: time.Now}
}

// PasswordLogin accepts any pair where both fields are non-empty
func (g *Gate) PasswordLogin(email, password string) (*Login, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	login := g.open(MethodPassword)
	login.Email = email
	slog.Info("Password login", "session_id", login.SessionID, "email", email)
	return login, nil
}

// GoogleLogin accepts any non-empty credential from Google Sign-In. When the
// credential decodes as an ID token its subject and email are logged; the
// signature is not checked.
func (g *Gate) GoogleLogin(credential string) (*Login, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	login := g.open(MethodGoogle)

	payload, err := idtoken.ParsePayload(credential)
	if err != nil {
		slog.Info("Google login", "session_id", login.SessionID, "credential", truncate(credential, 16), "decode_err", err)
		return login, nil
	}

	if email, ok := payload.Claims["email"].(string); ok {
		login.Email = email
	}
	slog.Info("Google login",
		"session_id", login.SessionID,
		"credential", truncate(credential, 16),
		"subject", payload.Subject,
		"email", login.Email,
		"audience", payload.Audience)
	return login, nil
}

// Lookup returns the view behind a session ID. An expired view is dropped
// from the store on the way.
func (g *Gate) Lookup(sessionID string) (*session.View, bool) {
	if sessionID == "" {
		return nil, false
	}
	view, ok := g.store.Get(sessionID)
	if !ok {
		return nil, false
	}
	if g.expired(view) {
		g.store.Delete(sessionID)
		slog.Info("Session expired", "session_id", sessionID)
		return nil, false
	}
	return view, true
}

// Sweep evicts every expired session
func (g *Gate) Sweep() int {
	return g.store.EvictIdle(g.now().Add(-SessionTTL))
}

// RunSweeper calls Sweep every interval until ctx is done
func (g *Gate) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

func (g *Gate) expired(view *session.View) bool {
	return g.now().Sub(view.LastActive()) > SessionTTL && !view.InFlight()
}

func (g *Gate) open(method Method) *Login {
	id := uuid.NewString()
	view := session.New(id, g.gen)
	g.store.Set(id, view)
	return &Login{SessionID: id, Method: method, View: view}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
