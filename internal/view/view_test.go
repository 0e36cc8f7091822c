package view

import (
	"testing"
	"time"

	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavItems(t *testing.T) {
	tests := []struct {
		name      string
		loggedIn  bool
		path      string
		wantRight string
		active    []bool
	}{
		{"anonymous home", false, "/", "Login", []bool{true, false}},
		{"anonymous login", false, "/login", "Login", []bool{false, true}},
		{"user on chats", true, "/chats/3", "pony", []bool{false, false}},
		{"user on profile", true, "/profile", "pony", []bool{false, true}},
		{"prefix is per segment", true, "/profiles", "pony", []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := NavItems(tt.loggedIn, "pony", tt.path)
			require.Len(t, items, 2)

			assert.Equal(t, "Pony Express", items[0].Name)
			assert.Equal(t, "/", items[0].Href)
			assert.Equal(t, tt.wantRight, items[1].Name)
			assert.True(t, items[1].Right)
			assert.Equal(t, tt.active, []bool{items[0].Active, items[1].Active})
		})
	}
}

func TestNewMessagesView(t *testing.T) {
	created := domain.NewTimestamp(time.Date(2024, 1, 2, 3, 4, 59, 0, time.UTC))
	b := &service.Board{
		ChatID: 42,
		Draft:  "half typed",
		Entries: []service.Entry{
			{Message: domain.Message{ID: 1, Text: "hi", CreatedAt: created, User: domain.User{Username: "pony"}}, Mine: true, Editing: true},
			{Message: domain.Message{ID: 2, Text: "yo", User: domain.User{Username: "bronco"}}},
		},
	}

	v := NewMessagesView(b, time.UTC)

	assert.Equal(t, int64(42), v.ChatID)
	assert.Equal(t, "half typed", v.Compose.Value)
	assert.True(t, v.Compose.Required)
	require.Len(t, v.Rows, 2)

	assert.Equal(t, "2024/01/02 03:04", v.Rows[0].CreatedAt)
	assert.Equal(t, "hi", v.Rows[0].Edit.Value)
	assert.False(t, v.Rows[0].Edit.Required)
	assert.True(t, v.Rows[0].Mine)

	assert.Empty(t, v.Rows[1].CreatedAt)
	assert.Empty(t, v.Rows[1].Edit.Name)
	assert.Equal(t, "bronco", v.Rows[1].Username)
}

func TestLoginPageNeverEchoesPassword(t *testing.T) {
	p := NewLoginPage(Layout{Title: "Login"}, "pony", "invalid username or password")
	assert.Equal(t, "pony", p.Username.Value)
	assert.Equal(t, "password", p.Password.Type)
	assert.Empty(t, p.Password.Value)

	r := NewRegisterPage(Layout{}, "pony", "p@x.io", "")
	assert.Equal(t, "email", r.Email.Type)
	assert.Equal(t, "p@x.io", r.Email.Value)
}
