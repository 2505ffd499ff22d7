package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/idealab/internal/storage"
)

func TestPasswordLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "both present", email: "a@b.co", password: "x"},
		{name: "missing password", email: "a@b.co", wantErr: true},
		{name: "missing email", password: "x", wantErr: true},
		{name: "both missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.New()
			gate := NewGate(store, nil)

			login, err := gate.PasswordLogin(tt.email, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingCredentials) {
					t.Errorf("Expected ErrMissingCredentials, got %v", err)
				}
				if err != nil && err.Error() != "Please enter both email and password." {
					t.Errorf("Unexpected message %q", err.Error())
				}
				if store.Len() != 0 {
					t.Errorf("Expected no session, got %d", store.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if login.Method != MethodPassword || login.Email != tt.email {
				t.Errorf("Unexpected login %+v", login)
			}
			if _, ok := gate.Lookup(login.SessionID); !ok {
				t.Error("Expected session to be stored")
			}
		})
	}
}

func TestGoogleLogin(t *testing.T) {
	enc := base64.RawURLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(`{"iss":"https://accounts.google.com","aud":"client","sub":"123","email":"maker@example.com","exp":1,"iat":1}`)) + "." +
		enc.EncodeToString([]byte("sig"))

	tests := []struct {
		name       string
		credential string
		wantEmail  string
		wantErr    bool
	}{
		{name: "id token", credential: token, wantEmail: "maker@example.com"},
		{name: "opaque credential", credential: "not-a-jwt"},
		{name: "empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(storage.New(), nil)
			login, err := gate.GoogleLogin(tt.credential)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingCredential) {
					t.Errorf("Expected ErrMissingCredential, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if login.Method != MethodGoogle {
				t.Errorf("Expected google method, got %s", login.Method)
			}
			if login.Email != tt.wantEmail {
				t.Errorf("Expected email %q, got %q", tt.wantEmail, login.Email)
			}
		})
	}
}

func TestEachLoginGetsAFreshSession(t *testing.T) {
	gate := NewGate(storage.New(), nil)
	first, _ := gate.PasswordLogin("a@b.co", "x")
	second, _ := gate.PasswordLogin("a@b.co", "x")

	if first.SessionID == second.SessionID || first.View == second.View {
		t.Error("Expected distinct sessions for each login")
	}
}

func TestRequireLogin(t *testing.T) {
	gate := NewGate(storage.New(), nil)
	login, err := gate.PasswordLogin("a@b.co", "x")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	protected := gate.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ViewFrom(r.Context()) != login.View {
			t.Error("Expected view in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		cookie   string
		expected int
	}{
		{name: "no cookie", expected: http.StatusUnauthorized},
		{name: "unknown session", cookie: "nope", expected: http.StatusUnauthorized},
		{name: "valid session", cookie: login.SessionID, expected: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/studio", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "abc", true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "abc" || !c.HttpOnly || !c.Secure {
		t.Errorf("Unexpected cookie %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if got := SessionID(req); got != "abc" {
		t.Errorf("Expected abc, got %q", got)
	}
}

func TestExpiredSessionsAreEvicted(t *testing.T) {
	store := storage.New()
	gate := NewGate(store, nil)

	for i := 0; i < 100; i++ {
		if _, err := gate.PasswordLogin("a", "b"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if store.Len() != 100 {
		t.Fatalf("Expected 100 sessions, got %d", store.Len())
	}

	if n := gate.Sweep(); n != 0 {
		t.Errorf("Expected fresh sessions to survive, evicted %d", n)
	}

	gate.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }
	if n := gate.Sweep(); n != 100 {
		t.Errorf("Expected 100 evictions, got %d", n)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestLookupDropsExpiredSession(t *testing.T) {
	store := storage.New()
	gate := NewGate(store, nil)
	login, _ := gate.PasswordLogin("a@b.co", "x")

	if _, ok := gate.Lookup(login.SessionID); !ok {
		t.Fatal("Expected live session")
	}

	gate.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }
	if _, ok := gate.Lookup(login.SessionID); ok {
		t.Error("Expected expired session to be rejected")
	}
	if store.Len() != 0 {
		t.Errorf("Expected expired session removed, got %d", store.Len())
	}
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	gate := NewGate(storage.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		gate.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected sweeper to stop when the context is cancelled")
	}
}
