package chat

import "errors"

var (
	ErrInvalidRole     = errors.New("invalid message role")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrNoActiveSession = errors.New("no active chat session")
)
