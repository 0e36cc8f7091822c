package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	r := decode(t, w)
	assert.True(t, r.Success)
	assert.Nil(t, r.Error)
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AbortWithError(c, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "session store unavailable")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	r := decode(t, w)
	assert.False(t, r.Success)
	assert.Equal(t, "SESSION_UNAVAILABLE", r.Error.Code)
}

func TestServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ServiceUnavailable(c, map[string]string{"session_store": "down"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	r := decode(t, w)
	assert.Equal(t, "UNAVAILABLE", r.Error.Code)
	assert.Equal(t, map[string]interface{}{"session_store": "down"}, r.Data)
}
