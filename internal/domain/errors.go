package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request is invalid (e.g. end_time before start_time).
	ErrInvalidInput = errors.New("invalid input")

	// ErrBookUnavailable is returned when checking out a book that already has an open borrow.
	ErrBookUnavailable = errors.New("book is not available")

	// ErrBorrowClosed is returned when returning a borrow that is already closed.
	ErrBorrowClosed = errors.New("borrow already returned")

	// ErrAlreadyInvited is returned by the invitation repository when an
	// invitation for the same (event, email) pair already exists. The service
	// converts it into an "already invited" result rather than a failure.
	ErrAlreadyInvited = errors.New("already invited")

	// ErrAlreadyResponded is returned when responding to an invitation that
	// is no longer pending. Accepted and declined are terminal.
	ErrAlreadyResponded = errors.New("invitation already responded to")

	// ErrUserNotFound is returned when a user lookup finds no row.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when creating a user with an email already in use.
	ErrDuplicateEmail = errors.New("email already in use")
)
