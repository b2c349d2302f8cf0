package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrBackend        = errors.New("backend failure")
	ErrSessionExpired = errors.New("session expired")
)
