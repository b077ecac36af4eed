package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrGenerateToken      = errors.New("failed to generate token")
	ErrUserLogin          = errors.New("failed to login")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrCallAssistant  = errors.New("error while calling assistant")
	ErrAssistantLLM   = errors.New("assistant model is unavailable")
	ErrGetHistory     = errors.New("failed to get chat history")
	ErrClearHistory   = errors.New("failed to clear chat history")
	ErrNoSession      = errors.New("no active session")
	ErrCreateSession  = errors.New("failed to create a chat session")
	ErrGetStatus      = errors.New("failed to get assistant status")
	ErrSessionSummary = errors.New("failed to get session summary")
	ErrSessionStats   = errors.New("failed to get session stats")
)
