package service

import (
	"context"

	"github.com/manglemix/pony-express/internal/domain"
)

// Backend is the part of the backend client the services read and write
// through. *client.Client implements it.
type Backend interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	ListChats(ctx context.Context, token string) ([]domain.Chat, error)
	GetChat(ctx context.Context, token string, chatID int64) (*domain.ChatDetail, error)
	ListMessages(ctx context.Context, token string, chatID int64) ([]domain.Message, error)
	SendMessage(ctx context.Context, token string, chatID int64, text string) (*domain.Message, error)
	EditMessage(ctx context.Context, token string, chatID, messageID int64, text string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, token string, chatID, messageID int64) error
}

// SessionSaver persists a session after the service filled in its user.
type SessionSaver interface {
	Save(ctx context.Context, sess *domain.Session) error
}

// UserService resolves the logged-in user of a session.
type UserService interface {
	Current(ctx context.Context, sess *domain.Session) (*domain.User, error)
}

// ChatService builds the chat list and chat headers.
type ChatService interface {
	List(ctx context.Context, sess *domain.Session) ([]ChatPreview, error)
	Get(ctx context.Context, sess *domain.Session, chatID int64) (*ChatPreview, error)
}

// MessageService owns the message board of each session.
type MessageService interface {
	Open(ctx context.Context, sess *domain.Session, chatID int64) (*Board, error)
	Load(ctx context.Context, sess *domain.Session, chatID int64) (*Board, error)
	Send(ctx context.Context, sess *domain.Session, chatID int64, text string) (*Board, error)
	StartEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error)
	SubmitEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64, text string) (*Board, error)
	CancelEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error)
	Delete(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error)
	Unmount(ctx context.Context, sessionID string)
	Start(ctx context.Context) error
	Wait()
}
