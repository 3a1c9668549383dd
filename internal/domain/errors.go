package domain

import (
	"errors"
	"fmt"
)

// ErrNoRecord is returned by stores when a lookup matches nothing.
var ErrNoRecord = errors.New("record not found")

// Error kinds surfaced to clients.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrWrongOwner       = errors.New("user is not the owner of the item")
	ErrEmailExists      = errors.New("email already exists")
	ErrItemNotAvailable = errors.New("item is not available for booking")
	ErrClashState       = errors.New("clash state")
	ErrValidation       = errors.New("validation failed")
	ErrIllegalArgument  = errors.New("illegal argument")
)

// Error pairs a kind with a human readable description of the failing case.
type Error struct {
	Kind        error
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Errorf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// Describe returns the description carried by err, or its text when none is attached.
func Describe(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Description
	}
	return err.Error()
}
