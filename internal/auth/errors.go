package auth

import "errors"

var (
	ErrNotFound     = errors.New("auth: not found")
	ErrEmailInUse   = errors.New("auth: email already in use")
	ErrInvalidInput = errors.New("auth: invalid input")
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")
)
