package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader map[string]*domain.Session

func (m mapLoader) Load(_ context.Context, id string) (*domain.Session, error) {
	if id == "broken" {
		return nil, errors.New("store down")
	}
	if s, ok := m[id]; ok {
		return s, nil
	}
	return domain.NewSession("fresh"), nil
}

func signed(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func newEngine(m *SessionMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.LoadSession())
	r.GET("/", func(c *gin.Context) {
		sess := GetSession(c)
		c.String(http.StatusOK, "%s|%t|%s", sess.ID, sess.LoggedIn(), c.GetString(UserIDKey))
	})
	return r
}

func TestLoadSession(t *testing.T) {
	known := domain.NewSession("abc")
	known.SignIn(signed(t, "pony"))
	m := NewSessionMiddleware(mapLoader{"abc": known}, CookieConfig{Name: "pony_session", MaxAge: time.Hour})
	r := newEngine(m)

	tests := []struct {
		name   string
		cookie string
		want   string
		status int
	}{
		{"no cookie", "", "fresh|false|", http.StatusOK},
		{"known cookie", "abc", "abc|true|pony", http.StatusOK},
		{"store failure", "broken", "", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "pony_session", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, w.Body.String())
			}
		})
	}
}

func TestSetAndClearCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewSessionMiddleware(mapLoader{}, CookieConfig{Name: "pony_session", MaxAge: time.Hour})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.SetCookie(c, domain.NewSession("abc"))
	cookie := w.Result().Cookies()[0]
	assert.Equal(t, "abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	m.ClearCookie(c)
	assert.Less(t, w.Result().Cookies()[0].MaxAge, 0)
}

func TestGetSessionWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, GetSession(c).LoggedIn())
}
