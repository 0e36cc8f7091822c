package domain

import "strconv"

// User is a backend user as seen by the client. Read-only.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// IDString returns the id in the form used by log fields.
func (u *User) IDString() string {
	if u == nil {
		return ""
	}
	return strconv.FormatInt(u.ID, 10)
}

type UserEnvelope struct {
	User User `json:"user"`
}

// LoginRequest is the form body of POST /auth/token.
type LoginRequest struct {
	Username string
	Password string
}

// RegisterRequest is the JSON body of POST /auth/registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the backend's OAuth2-style token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}
