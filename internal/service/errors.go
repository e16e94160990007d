package service

import "errors"

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate")
	ErrStateConflict      = errors.New("state conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
