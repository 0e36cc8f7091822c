package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/pkg/jwt"
	"github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/response"
)

const (
	SessionKey = "session"
	// Shared with pkg/log so the request log carries the actor.
	SessionIDKey = log.FieldSessionID
	UserIDKey    = log.FieldUserID
)

// SessionLoader resolves a cookie value to a session.
type SessionLoader interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SessionMiddleware attaches the browser session to every request.
type SessionMiddleware struct {
	loader SessionLoader
	cookie CookieConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(loader SessionLoader, cookie CookieConfig) *SessionMiddleware {
	return &SessionMiddleware{
		loader: loader,
		cookie: cookie,
	}
}

// LoadSession returns a Gin middleware that loads the session named by the
// cookie, or a fresh anonymous one, and stores it in the context.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(m.cookie.Name)

		sess, err := m.loader.Load(c.Request.Context(), id)
		if err != nil {
			l := log.Ctx(c.Request.Context())
			l.Error().Err(err).Msg("failed to load session")
			response.AbortWithError(c, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "session store unavailable")
			return
		}

		c.Set(SessionKey, sess)
		if sess.LoggedIn() {
			c.Set(SessionIDKey, sess.ID)
			if sub := jwt.Subject(sess.Token); sub != "" {
				c.Set(UserIDKey, sub)
			}
		}

		c.Next()
	}
}

// SetCookie points the browser at sess.
func (m *SessionMiddleware) SetCookie(c *gin.Context, sess *domain.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, sess.ID, int(m.cookie.MaxAge.Seconds()), "/", "", m.cookie.Secure, true)
}

// ClearCookie removes the session cookie.
func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", "", m.cookie.Secure, true)
}

// GetSession extracts the session from Gin context.
// It never returns nil; without the middleware the session is anonymous.
func GetSession(c *gin.Context) *domain.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(*domain.Session); ok {
			return sess
		}
	}
	return domain.NewSession("")
}
