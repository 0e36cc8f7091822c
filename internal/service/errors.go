package service

import "errors"

var (
	ErrNotLoggedIn     = errors.New("session is not logged in")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrMessageNotFound = errors.New("message not found in chat")
	ErrNotAuthor       = errors.New("only the author can change a message")

	errUnmounted = errors.New("board unmounted")
)
