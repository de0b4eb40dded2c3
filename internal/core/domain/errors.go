package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core unwraps to exactly one of these.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrBusiness        = errors.New("business rule violated")
)

// Error is a user-facing core error. Its message is safe to return to clients.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// NewError builds an Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Validationf builds a validation Error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidID = NewError(ErrValidation, "invalid id")

	ErrEmailTaken         = NewError(ErrConflict, "email already registered, please use another one")
	ErrUserNotFound       = NewError(ErrNotFound, "user not found")
	ErrUnknownEmail       = NewError(ErrNotFound, "no user registered with this email")
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "invalid password")
	ErrAccessDenied       = NewError(ErrUnauthenticated, "access denied")
	ErrInvalidToken       = NewError(ErrUnauthenticated, "invalid token")

	ErrPetNotFound  = NewError(ErrNotFound, "pet not found")
	ErrNoPets       = NewError(ErrNotFound, "no pets registered")
	ErrNoAdoptions  = NewError(ErrNotFound, "you have not adopted any pets")
	ErrNotPetOwner  = NewError(ErrPermission, "there was a problem processing your request, please try again later")
	ErrNotConcluder = NewError(ErrPermission, "you are not allowed to conclude the adoption of a pet that is not yours")
	ErrSelfAdoption = NewError(ErrBusiness, "you cannot schedule a visit with your own pet")
	ErrVisitPending = NewError(ErrBusiness, "you have already scheduled a visit for this pet")
	ErrAdopted      = NewError(ErrBusiness, "this pet has already been adopted")
)

// ErrStaleWrite is returned by repositories when a conditional write matched
// no document because its precondition no longer held.
var ErrStaleWrite = errors.New("conditional write matched no document")
