package service

import (
	"context"

	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/query"
	"github.com/manglemix/pony-express/pkg/log"
)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	backend  Backend
	queries  *query.Cache
	sessions SessionSaver
}

// NewUserService creates a new user service.
func NewUserService(backend Backend, queries *query.Cache, sessions SessionSaver) UserService {
	return &userServiceImpl{
		backend:  backend,
		queries:  queries,
		sessions: sessions,
	}
}

// Current fetches /users/me once per login and keeps the result in the
// session.
func (s *userServiceImpl) Current(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if sess.User != nil {
		return sess.User, nil
	}

	token := sess.Token
	user, err := query.Fetch(ctx, s.queries, sess.ID, currentUserKey(), func(ctx context.Context) (*domain.User, error) {
		return s.backend.CurrentUser(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		// The user is refetched on the next request.
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldSessionID, sess.ID).Msg("failed to save session user")
	}

	return user, nil
}
