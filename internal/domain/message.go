package domain

// Message is a chat message. Only Text is ever changed client-side.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
	User      User      `json:"user"`
}

type MessageCollection struct {
	Meta     Meta      `json:"meta"`
	Messages []Message `json:"messages"`
}

type MessageEnvelope struct {
	Message Message `json:"message"`
}

// MessageText is the body of POST and PUT message calls.
type MessageText struct {
	Text string `json:"text"`
}
