package domain

// Chat is a chat summary as returned by GET /chats.
type Chat struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// ChatDetail is GET /chats/{id}?include=users.
type ChatDetail struct {
	Chat  Chat   `json:"chat"`
	Users []User `json:"users,omitempty"`
}

// Usernames lists participant names in response order.
func (d *ChatDetail) Usernames() []string {
	names := make([]string, 0, len(d.Users))
	for _, u := range d.Users {
		names = append(names, u.Username)
	}
	return names
}

type Meta struct {
	Count int `json:"count"`
}

type ChatCollection struct {
	Meta  Meta   `json:"meta"`
	Chats []Chat `json:"chats"`
}
