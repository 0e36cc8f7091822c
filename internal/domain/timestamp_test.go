package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-03-05T07:09:00Z"`, time.Date(2024, 3, 5, 7, 9, 0, 0, time.UTC)},
		{"offset", `"2024-03-05T09:09:00+02:00"`, time.Date(2024, 3, 5, 7, 9, 0, 0, time.UTC)},
		{"naive micros", `"2024-03-05T07:09:00.123456"`, time.Date(2024, 3, 5, 7, 9, 0, 123456000, time.UTC)},
		{"naive", `"2024-03-05T07:09:00"`, time.Date(2024, 3, 5, 7, 9, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestampUnmarshalRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestampNull(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"text":"hi","created_at":null}`), &msg))
	assert.True(t, msg.CreatedAt.IsZero())
}

func TestSessionSignInSignOut(t *testing.T) {
	s := NewSession("abc")
	assert.False(t, s.LoggedIn())

	s.User = &User{ID: 1, Username: "old"}
	s.SignIn("tok")
	assert.True(t, s.LoggedIn())
	assert.Nil(t, s.User)

	s.User = &User{ID: 2, Username: "pony"}
	c := s.Clone()
	c.User.Username = "changed"
	assert.Equal(t, "pony", s.User.Username)

	s.SignOut()
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User)

	var nilSession *Session
	assert.False(t, nilSession.LoggedIn())
}
