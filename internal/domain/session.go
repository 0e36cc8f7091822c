package domain

import "time"

// Session is one browser session: the bearer token and, once fetched,
// the current user. A session with an empty token is logged out.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an anonymous session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LoggedIn reports whether the session holds a token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// SignIn stores a token and drops any user fetched under an older token.
func (s *Session) SignIn(token string) {
	s.Token = token
	s.User = nil
	s.UpdatedAt = time.Now()
}

// SignOut clears the token and the user.
func (s *Session) SignOut() {
	s.Token = ""
	s.User = nil
	s.UpdatedAt = time.Now()
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}
