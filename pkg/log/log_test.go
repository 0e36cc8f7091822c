package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))
	return out
}

func TestTransportOmitsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), NewWithWriter(Config{Level: "debug"}, &buf))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/chats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")

	resp, err := (&http.Client{Transport: NewTransport(nil)}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	line := lastLine(t, &buf)
	assert.Equal(t, "backend call completed", line["message"])
	assert.Equal(t, "/chats", line[FieldPath])
	assert.Equal(t, float64(http.StatusTeapot), line[FieldStatus])
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(GinMiddleware(NewWithWriter(Config{ServiceName: "web"}, &buf)))
	r.GET("/", func(c *gin.Context) {
		c.Set(FieldSessionID, "s1")
		c.Set(FieldUserID, "42")
		l := Ctx(c.Request.Context())
		l.Info().Msg("inside")
		c.Redirect(http.StatusFound, "/login")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	line := lastLine(t, &buf)
	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "s1", line[FieldSessionID])
	assert.Equal(t, "42", line[FieldUserID])
	assert.Equal(t, "/login", line["redirect"])
	assert.Equal(t, "web", line[FieldService])
	assert.Contains(t, buf.String(), `"message":"inside"`)
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestDetachKeepsLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(WithLogger(context.Background(), NewWithWriter(Config{}, &buf)))
	cancel()

	detached := Detach(ctx)
	assert.NoError(t, detached.Err())

	l := Ctx(detached)
	l.Info().Msg("after cancel")
	assert.Contains(t, buf.String(), "after cancel")
}
