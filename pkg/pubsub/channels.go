package pubsub

// ChannelBoards carries message board changes between instances.
const ChannelBoards = "pony:boards"

// Event types on ChannelBoards.
const (
	EventBoardChanged   = "board_changed"
	EventBoardUnmounted = "board_unmounted"
)

// BoardPayload names the board an event is about. ChatID is zero for
// EventBoardUnmounted.
type BoardPayload struct {
	SessionID string `json:"session_id"`
	ChatID    int64  `json:"chat_id,omitempty"`
}
