package service

import "github.com/manglemix/pony-express/internal/query"

func currentUserKey() query.Key {
	return query.NewKey("users", "me")
}

func chatsKey() query.Key {
	return query.NewKey("chats")
}

func chatKey(chatID int64) query.Key {
	return query.NewKey("chats", chatID)
}

// Kept apart from chatKey so a chat header and its messages never share
// a cache entry; invalidating chatKey still covers both.
func messagesKey(chatID int64) query.Key {
	return query.NewKey("chats", chatID, "messages")
}
