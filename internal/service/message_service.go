package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/manglemix/pony-express/internal/audit"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/query"
	"github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/pubsub"
)

// messageServiceImpl implements MessageService interface.
type messageServiceImpl struct {
	backend Backend
	queries *query.Cache
	users   UserService
	boards   *boardSet
	pending  sync.WaitGroup
	inflight *inflight

	bus    pubsub.PubSub
	origin string
}

// NewMessageService creates a new message service.
func NewMessageService(backend Backend, queries *query.Cache, users UserService, opts ...MessageServiceOption) MessageService {
	s := &messageServiceImpl{
		backend: backend,
		queries: queries,
		users:   users,
		boards:   newBoardSet(),
		inflight: newInflight(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open mounts the board of chatID for the session. An already mounted
// board for the same chat is returned as is; any other board is replaced.
func (s *messageServiceImpl) Open(ctx context.Context, sess *domain.Session, chatID int64) (*Board, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if b := s.boards.get(sess.ID, chatID); b != nil {
		return b, nil
	}

	b, err := s.fetchBoard(ctx, sess, chatID)
	if err != nil {
		return nil, err
	}
	return s.boards.mount(sess.ID, nil, b), nil
}

// Load shows chatID for a page view: the list is fetched again from the
// backend and replaces the local one, keeping the draft and edit modes.
// While an edit or delete of the chat is still in flight the local list
// is kept as is.
func (s *messageServiceImpl) Load(ctx context.Context, sess *domain.Session, chatID int64) (*Board, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	prev := s.boards.get(sess.ID, chatID)
	if prev != nil && s.inflight.busy(boardKey{sess.ID, chatID}) {
		return prev, nil
	}

	s.invalidate(ctx, sess.ID, chatID)
	b, err := s.fetchBoard(ctx, sess, chatID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		b = b.carried(prev)
	}
	return s.boards.mount(sess.ID, prev, b), nil
}

func (s *messageServiceImpl) fetchBoard(ctx context.Context, sess *domain.Session, chatID int64) (*Board, error) {
	user, err := s.users.Current(ctx, sess)
	if err != nil {
		return nil, err
	}

	token := sess.Token
	msgs, err := query.Fetch(ctx, s.queries, sess.ID, messagesKey(chatID), func(ctx context.Context) ([]domain.Message, error) {
		return s.backend.ListMessages(ctx, token, chatID)
	})
	if err != nil {
		return nil, err
	}
	return newBoard(chatID, user.ID, msgs), nil
}

// Send posts text and waits for the stored message before appending it.
// On failure the text stays in the draft.
func (s *messageServiceImpl) Send(ctx context.Context, sess *domain.Session, chatID int64, text string) (*Board, error) {
	if _, err := s.Open(ctx, sess, chatID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := s.backend.SendMessage(ctx, sess.Token, chatID, text)
	if err != nil {
		_, _ = s.boards.update(sess.ID, chatID, func(b *Board) (*Board, error) {
			return b.withDraft(text), nil
		})
		return nil, err
	}

	s.invalidate(ctx, sess.ID, chatID)
	audit.LogTarget(ctx, audit.ActionMessageSend, sess.ID, idString(msg.ID), "message sent")

	s.publish(ctx, pubsub.EventBoardChanged, sess.ID, chatID)

	b, err := s.boards.update(sess.ID, chatID, func(b *Board) (*Board, error) {
		return b.appended(*msg).withDraft(""), nil
	})
	if errors.Is(err, errUnmounted) {
		// The reload picks the new message up from the backend.
		return s.Open(ctx, sess, chatID)
	}
	return b, err
}

// StartEdit turns on edit mode for one of the viewer's messages.
func (s *messageServiceImpl) StartEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error) {
	return s.mutate(ctx, sess, chatID, func(b *Board) (*Board, error) {
		i, err := ownEntry(b, messageID)
		if err != nil {
			return nil, err
		}
		return b.patched(i, func(e *Entry) { e.Editing = true }), nil
	})
}

// SubmitEdit applies text locally and sends the PUT without waiting for
// it. Empty text deletes the message instead.
func (s *messageServiceImpl) SubmitEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64, text string) (*Board, error) {
	if text == "" {
		return s.Delete(ctx, sess, chatID, messageID)
	}

	b, err := s.mutate(ctx, sess, chatID, func(b *Board) (*Board, error) {
		i, err := ownEntry(b, messageID)
		if err != nil {
			return nil, err
		}
		return b.patched(i, func(e *Entry) {
			e.Text = text
			e.Editing = false
		}), nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sess.ID, chatID)

	token := sess.Token
	s.dispatch(ctx, sess.ID, chatID, messageID, b.loaded, audit.ActionMessageEdit, func(ctx context.Context) error {
		_, err := s.backend.EditMessage(ctx, token, chatID, messageID, text)
		return err
	})
	return b, nil
}

// CancelEdit leaves edit mode. The text shown is still the last saved one.
func (s *messageServiceImpl) CancelEdit(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error) {
	return s.mutate(ctx, sess, chatID, func(b *Board) (*Board, error) {
		i := b.Find(messageID)
		if i < 0 {
			return nil, ErrMessageNotFound
		}
		return b.patched(i, func(e *Entry) { e.Editing = false }), nil
	})
}

// Delete removes the message locally and sends the DELETE without waiting
// for it.
func (s *messageServiceImpl) Delete(ctx context.Context, sess *domain.Session, chatID, messageID int64) (*Board, error) {
	b, err := s.mutate(ctx, sess, chatID, func(b *Board) (*Board, error) {
		i, err := ownEntry(b, messageID)
		if err != nil {
			return nil, err
		}
		return b.removed(i), nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sess.ID, chatID)

	token := sess.Token
	s.dispatch(ctx, sess.ID, chatID, messageID, b.loaded, audit.ActionMessageDelete, func(ctx context.Context) error {
		return s.backend.DeleteMessage(ctx, token, chatID, messageID)
	})
	return b, nil
}

// Unmount drops the session's board, and tells other instances when there
// was one to drop.
func (s *messageServiceImpl) Unmount(ctx context.Context, sessionID string) {
	if s.boards.drop(sessionID) {
		s.publish(ctx, pubsub.EventBoardUnmounted, sessionID, 0)
	}
}

// Wait blocks until every dispatched edit and delete has finished.
func (s *messageServiceImpl) Wait() {
	s.pending.Wait()
}

// mutate applies fn to the mounted board of chatID, mounting it first.
func (s *messageServiceImpl) mutate(ctx context.Context, sess *domain.Session, chatID int64, fn func(*Board) (*Board, error)) (*Board, error) {
	for attempt := 0; ; attempt++ {
		if _, err := s.Open(ctx, sess, chatID); err != nil {
			return nil, err
		}
		b, err := s.boards.update(sess.ID, chatID, fn)
		if errors.Is(err, errUnmounted) && attempt == 0 {
			continue
		}
		if err == nil {
			s.publish(ctx, pubsub.EventBoardChanged, sess.ID, chatID)
		}
		return b, err
	}
}

// dispatch runs call in the background for a change applied locally to
// the board of fetch number applied. A failure leaves the board out of
// step with the backend, so the board and its cached messages are dropped
// and the next Open reloads them. After a success only a board fetched in
// the meantime is dropped, since it may predate the change.
func (s *messageServiceImpl) dispatch(ctx context.Context, sessionID string, chatID, messageID int64, applied uint64, action string, call func(context.Context) error) {
	ctx = log.Detach(ctx)
	key := boardKey{sessionID, chatID}

	s.pending.Add(1)
	s.inflight.add(key)
	go func() {
		defer s.pending.Done()
		defer s.inflight.done(key)

		if err := call(ctx); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).
				Str(log.FieldSessionID, sessionID).
				Int64(log.FieldChatID, chatID).
				Int64(log.FieldMessageID, messageID).
				Str(audit.FieldAction, action).
				Msg("background message update failed")
			s.boards.dropChat(sessionID, chatID)
			s.invalidate(ctx, sessionID, chatID)
			s.publish(ctx, pubsub.EventBoardChanged, sessionID, chatID)
			return
		}

		s.invalidate(ctx, sessionID, chatID)
		if s.boards.dropStale(sessionID, chatID, applied) {
			s.publish(ctx, pubsub.EventBoardChanged, sessionID, chatID)
		}
		audit.LogTarget(ctx, action, sessionID, idString(messageID), "message updated")
	}()
}

func (s *messageServiceImpl) invalidate(ctx context.Context, sessionID string, chatID int64) {
	if err := s.queries.Invalidate(ctx, sessionID, messagesKey(chatID)); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Int64(log.FieldChatID, chatID).Msg("failed to invalidate messages query")
	}
}

func ownEntry(b *Board, messageID int64) (int, error) {
	i := b.Find(messageID)
	if i < 0 {
		return -1, ErrMessageNotFound
	}
	if !b.Entries[i].Mine {
		return -1, ErrNotAuthor
	}
	return i, nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
