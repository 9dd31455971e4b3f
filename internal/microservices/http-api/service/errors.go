package service

import (
	"errors"
	"fmt"
)

// Catalogue errors. Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrBookNotFound     = errors.New("book not found")
	ErrBookUnavailable  = errors.New("book is not available")
	ErrConcurrentUpdate = errors.New("book was modified concurrently, reload and retry")

	// ErrForbidden is the parent of every "authenticated but not entitled" error.
	ErrForbidden = errors.New("not authorized")
	ErrNotHolder = fmt.Errorf("%w: book is not borrowed by you", ErrForbidden)
	ErrNotOwner  = fmt.Errorf("%w: only the creator may delete this book", ErrForbidden)
)

// Authentication errors.
var (
	ErrNameInUse          = errors.New("username already in use")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
)

func validationError(problems []string) error {
	msg := problems[0]
	for _, p := range problems[1:] {
		msg += "; " + p
	}
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
