package client

import (
	"context"
	"sync"

	"github.com/renthaven/renthaven/internal/models"
)

// Session manages the sign-in lifecycle over a Client. The session cookie
// itself lives in the client's cookie jar; Session tracks the user identity
// and notifies an optional callback on every change.
type Session struct {
	client *Client

	mu      sync.Mutex
	current *models.AuthUser

	// OnChange, when set, is called with the new user after every state
	// change: the user on sign-in, nil on sign-out. Set before first use.
	OnChange func(*models.AuthUser)
}

// NewSession creates a session manager over the client.
func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Current returns the signed-in user, or nil when signed out.
func (s *Session) Current() *models.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// SignIn authenticates and stores the session cookie in the client's jar.
func (s *Session) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	user, err := s.client.login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.setCurrent(user)
	return user, nil
}

// SignUp registers a new account. The caller signs in separately; providers
// commonly require email verification first.
func (s *Session) SignUp(ctx context.Context, email, password string) error {
	return s.client.signup(ctx, email, password)
}

// SignOut revokes the session and clears the local identity. The local state
// is cleared even when the server call fails, so a dead backend cannot pin a
// stale identity.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.client.logout(ctx)
	s.setCurrent(nil)
	return err
}

// ForgotPassword asks the provider to send a password reset email.
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	return s.client.forgotPassword(ctx, email)
}

// Restore asks the server who the session cookie belongs to, picking up a
// session that survived a restart. Clears the identity when the cookie is
// absent or expired.
func (s *Session) Restore(ctx context.Context) (*models.AuthUser, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		s.setCurrent(nil)
		return nil, err
	}

	s.setCurrent(user)
	return user, nil
}

func (s *Session) setCurrent(user *models.AuthUser) {
	s.mu.Lock()
	changed := (s.current == nil) != (user == nil) ||
		(s.current != nil && user != nil && s.current.ID != user.ID)
	s.current = user
	callback := s.OnChange
	s.mu.Unlock()

	if changed && callback != nil {
		callback(user)
	}
}
