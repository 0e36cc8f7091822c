package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/manglemix/pony-express/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second), &seen
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListChats(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"meta":  map[string]int{"count": 2},
			"chats": []map[string]any{{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00"}, {"id": 2, "name": "b", "created_at": "2024-01-02T00:00:00"}},
		})
	})

	chats, err := c.ListChats(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "b", chats[1].Name)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, "/chats", (*seen)[0].Path)
	assert.Equal(t, "Bearer tok", (*seen)[0].Auth)
}

func TestGetChatIncludesUsers(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"chat":  map[string]any{"id": 9, "name": "nine", "created_at": "2024-01-01T00:00:00Z"},
			"users": []map[string]any{{"id": 1, "username": "pony"}},
		})
	})

	detail, err := c.GetChat(context.Background(), "tok", 9)
	require.NoError(t, err)
	assert.Equal(t, "nine", detail.Chat.Name)
	assert.Equal(t, []string{"pony"}, detail.Usernames())
	assert.Equal(t, "/chats/9", (*seen)[0].Path)
	assert.Equal(t, "include=users", (*seen)[0].Query)
}

func TestSendMessage(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": map[string]any{"id": 7, "chat_id": 42, "text": "hello", "created_at": "2024-01-01T00:00:00", "user": map[string]any{"id": 3, "username": "me"}},
		})
	})

	msg, err := c.SendMessage(context.Background(), "tok", 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)
	assert.Equal(t, "hello", msg.Text)

	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/chats/42/messages", req.Path)
	assert.JSONEq(t, `{"text":"hello"}`, req.Body)
}

func TestEditAndDeleteMessage(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": map[string]any{"id": 5, "text": "new"}})
	})

	msg, err := c.EditMessage(context.Background(), "tok", 1, 5, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", msg.Text)
	require.NoError(t, c.DeleteMessage(context.Background(), "tok", 1, 5))

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodPut, (*seen)[0].Method)
	assert.Equal(t, "/chats/1/messages/5", (*seen)[0].Path)
	assert.JSONEq(t, `{"text":"new"}`, (*seen)[0].Body)
	assert.Equal(t, http.MethodDelete, (*seen)[1].Method)
	assert.Equal(t, "/chats/1/messages/5", (*seen)[1].Path)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"not found", http.StatusNotFound, `{"detail":"nope"}`, KindNotFound},
		{"forbidden", http.StatusForbidden, `{}`, KindGeneric},
		{"server error", http.StatusInternalServerError, ``, KindGeneric},
		{"bad json", http.StatusOK, `{not json`, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.ListMessages(context.Background(), "tok", 1)
			require.Error(t, err)
			assert.Equal(t, tt.want, Classify(err))
		})
	}
}

func TestTransportFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.ListChats(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, KindGeneric, Classify(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestStatusErrorUnwrap(t *testing.T) {
	err := NewStatusError("get chat", http.StatusNotFound, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrGeneric))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, KindOK, Classify(nil))
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestLogin(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc", "token_type": "bearer"})
	})

	tok, err := c.Login(context.Background(), domain.LoginRequest{Username: "pony", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "/auth/token", (*seen)[0].Path)
	assert.Empty(t, (*seen)[0].Auth)

	_, err = c.Login(context.Background(), domain.LoginRequest{Username: "pony", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestRegister(t *testing.T) {
	c, seen := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"user": map[string]any{"id": 4, "username": "pony", "email": "p@x.io"}})
	})

	u, err := c.Register(context.Background(), domain.RegisterRequest{Username: "pony", Email: "p@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
	assert.Equal(t, "/auth/registration", (*seen)[0].Path)
	assert.JSONEq(t, `{"username":"pony","email":"p@x.io","password":"pw"}`, (*seen)[0].Body)
}

func TestErrorRoute(t *testing.T) {
	assert.Equal(t, "", ErrorRoute(nil))
	assert.Equal(t, RouteErrorNotFound, ErrorRoute(NewStatusError("get chat", http.StatusNotFound, nil)))
	assert.Equal(t, RouteError, ErrorRoute(NewStatusError("get chat", http.StatusBadGateway, nil)))
	assert.Equal(t, RouteError, ErrorRoute(errors.New("boom")))
}
