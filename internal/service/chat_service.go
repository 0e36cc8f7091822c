package service

import (
	"context"
	"time"

	"github.com/manglemix/pony-express/internal/datefmt"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/query"
	"golang.org/x/sync/errgroup"
)

// ChatPreview is one row of the chat list.
type ChatPreview struct {
	ID        int64
	Name      string
	CreatedAt string
	Usernames []string
}

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	backend Backend
	queries *query.Cache
	loc     *time.Location
}

// NewChatService creates a new chat service. Creation times are rendered
// in loc.
func NewChatService(backend Backend, queries *query.Cache, loc *time.Location) ChatService {
	return &chatServiceImpl{
		backend: backend,
		queries: queries,
		loc:     loc,
	}
}

// List fetches the chat list and then every chat's detail. Details are
// fetched concurrently; the result keeps list order. One failed fetch
// fails the whole list.
func (s *chatServiceImpl) List(ctx context.Context, sess *domain.Session) ([]ChatPreview, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	token := sess.Token
	chats, err := query.Fetch(ctx, s.queries, sess.ID, chatsKey(), func(ctx context.Context) ([]domain.Chat, error) {
		return s.backend.ListChats(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	previews := make([]ChatPreview, len(chats))
	g, gctx := errgroup.WithContext(ctx)
	for i, chat := range chats {
		g.Go(func() error {
			detail, err := s.detail(gctx, sess, chat.ID)
			if err != nil {
				return err
			}
			previews[i] = s.preview(detail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return previews, nil
}

// Get returns the preview of a single chat.
func (s *chatServiceImpl) Get(ctx context.Context, sess *domain.Session, chatID int64) (*ChatPreview, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	detail, err := s.detail(ctx, sess, chatID)
	if err != nil {
		return nil, err
	}

	p := s.preview(detail)
	return &p, nil
}

func (s *chatServiceImpl) detail(ctx context.Context, sess *domain.Session, chatID int64) (*domain.ChatDetail, error) {
	token := sess.Token
	return query.Fetch(ctx, s.queries, sess.ID, chatKey(chatID), func(ctx context.Context) (*domain.ChatDetail, error) {
		return s.backend.GetChat(ctx, token, chatID)
	})
}

func (s *chatServiceImpl) preview(d *domain.ChatDetail) ChatPreview {
	p := ChatPreview{
		ID:        d.Chat.ID,
		Name:      d.Chat.Name,
		Usernames: d.Usernames(),
	}
	if !d.Chat.CreatedAt.IsZero() {
		p.CreatedAt = datefmt.FormatIn(d.Chat.CreatedAt.Time, s.loc)
	}
	return p
}
