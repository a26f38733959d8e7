package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSelfDelete         = errors.New("users cannot delete themselves")
	ErrRecordNotFound     = errors.New("record not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrNotChannelMember   = errors.New("not a member of this channel")
	ErrEmptyMessage       = errors.New("message has no text or image")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoSession          = errors.New("no active session")
)
