package store

import "errors"

// Typed failures shared by every Store implementation. Handlers map these
// to HTTP status codes with errors.Is.
var (
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrNotRegistered     = errors.New("user not registered")
	ErrNameTaken         = errors.New("name not available")
	ErrUserNotFound      = errors.New("no user found")
	ErrInvalidTarget     = errors.New("invalid target account")
	ErrPostNotFound      = errors.New("post not found")
	ErrEmptyMessage      = errors.New("empty message")
	ErrEmptyComment      = errors.New("empty comment")
	ErrNotConnected      = errors.New("contact not connected")
)
