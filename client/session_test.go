package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/renthaven/renthaven/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authBackend fakes the auth endpoints with a cookie-bound session
type authBackend struct {
	mu       sync.Mutex
	accounts map[string]string // email -> password
	sessions map[string]string // token -> email
	next     int
}

func newAuthBackend() *authBackend {
	return &authBackend{
		accounts: map[string]string{"resident@example.com": "hunter2"},
		sessions: make(map[string]string),
	}
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.accounts[body.Email] != body.Password {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		b.next++
		token := "tok-" + body.Email
		b.sessions[token] = body.Email
		http.SetCookie(w, &http.Cookie{Name: "cookie_session", Value: token, Path: "/"})
		_ = json.NewEncoder(w).Encode(models.AuthUser{ID: "user-" + body.Email, Email: body.Email})
	})
	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.accounts[body.Email]; exists {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "user already exists"})
			return
		}
		b.accounts[body.Email] = body.Password
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cookie, err := r.Cookie("cookie_session"); err == nil {
			delete(b.sessions, cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: "cookie_session", Value: "", Path: "/", MaxAge: -1})
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		cookie, err := r.Cookie("cookie_session")
		if err != nil || b.sessions[cookie.Value] == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		email := b.sessions[cookie.Value]
		_ = json.NewEncoder(w).Encode(models.AuthUser{ID: "user-" + email, Email: email})
	})
	return mux
}

func TestSessionSignInAndOut(t *testing.T) {
	backend := newAuthBackend()
	c, _ := newTestClient(t, backend.handler())

	var notified []*models.AuthUser
	session := NewSession(c)
	session.OnChange = func(u *models.AuthUser) {
		notified = append(notified, u)
	}

	ctx := context.Background()
	assert.Nil(t, session.Current())

	user, err := session.SignIn(ctx, "resident@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "resident@example.com", user.Email)
	require.NotNil(t, session.Current())
	assert.Equal(t, user.ID, session.Current().ID)

	// The cookie jar now authenticates follow-up requests
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, session.SignOut(ctx))
	assert.Nil(t, session.Current())

	// The server-side session is gone too
	_, err = c.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	// One notification per state change: sign-in, sign-out
	require.Len(t, notified, 2)
	assert.NotNil(t, notified[0])
	assert.Nil(t, notified[1])
}

func TestSessionBadCredentials(t *testing.T) {
	backend := newAuthBackend()
	c, _ := newTestClient(t, backend.handler())
	session := NewSession(c)

	_, err := session.SignIn(context.Background(), "resident@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Nil(t, session.Current())
}

func TestSessionSignUpThenSignIn(t *testing.T) {
	backend := newAuthBackend()
	c, _ := newTestClient(t, backend.handler())
	session := NewSession(c)
	ctx := context.Background()

	require.NoError(t, session.SignUp(ctx, "new@example.com", "s3cret"))
	// Signing up does not sign in
	assert.Nil(t, session.Current())

	user, err := session.SignIn(ctx, "new@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	// Duplicate registration is rejected
	err = session.SignUp(ctx, "new@example.com", "s3cret")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSessionRestore(t *testing.T) {
	backend := newAuthBackend()
	c, _ := newTestClient(t, backend.handler())
	ctx := context.Background()

	// First session signs in; the jar holds the cookie
	first := NewSession(c)
	_, err := first.SignIn(ctx, "resident@example.com", "hunter2")
	require.NoError(t, err)

	// A fresh Session over the same client can restore the identity
	second := NewSession(c)
	user, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "resident@example.com", user.Email)

	// Restore with no live session clears the identity
	require.NoError(t, first.SignOut(ctx))
	_, err = second.Restore(ctx)
	require.Error(t, err)
	assert.Nil(t, second.Current())
}
