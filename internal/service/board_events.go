package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/pubsub"
)

const publishTimeout = 2 * time.Second

// MessageServiceOption configures a message service.
type MessageServiceOption func(*messageServiceImpl)

// WithBoardEvents shares board changes with other frontend instances over
// bus. An instance that hears about a change drops its own copy of that
// board and reloads it on the next request.
func WithBoardEvents(bus pubsub.PubSub) MessageServiceOption {
	return func(s *messageServiceImpl) {
		s.bus = bus
		s.origin = uuid.New().String()
	}
}

// Start follows board events until ctx is done. Without a bus it is a
// no-op.
func (s *messageServiceImpl) Start(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}

	events, err := s.bus.Subscribe(ctx, pubsub.ChannelBoards)
	if err != nil {
		return err
	}

	go func() {
		for ev := range events {
			s.applyEvent(ctx, ev)
		}
	}()
	return nil
}

func (s *messageServiceImpl) applyEvent(ctx context.Context, ev *pubsub.Event) {
	if ev.Origin == s.origin {
		return
	}

	var p pubsub.BoardPayload
	if err := ev.UnmarshalPayload(&p); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("type", ev.Type).Msg("invalid board event")
		return
	}

	switch ev.Type {
	case pubsub.EventBoardChanged:
		s.boards.dropChat(p.SessionID, p.ChatID)
	case pubsub.EventBoardUnmounted:
		s.boards.drop(p.SessionID)
	}
}

func (s *messageServiceImpl) publish(ctx context.Context, eventType, sessionID string, chatID int64) {
	if s.bus == nil {
		return
	}
	l := log.Ctx(ctx)

	ev, err := pubsub.NewEvent(eventType, s.origin, pubsub.BoardPayload{SessionID: sessionID, ChatID: chatID})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build board event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.bus.Publish(ctx, pubsub.ChannelBoards, ev); err != nil {
		l.Warn().Err(err).Str("type", eventType).Str(log.FieldSessionID, sessionID).Msg("failed to publish board event")
	}
}
