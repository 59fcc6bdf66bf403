package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateSession = errors.New("session token already stored")
)
