package domain

import "errors"

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrInvalidEmail    = errors.New("invalid email")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")

	ErrCallFull    = errors.New("call room is full")
	ErrNoCall      = errors.New("no call in room")
	ErrNotInRoom   = errors.New("connection not in room")
	ErrEmptyRoomID = errors.New("empty room id")
)
