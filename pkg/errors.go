// Package pkg holds the helpers shared by every layer: sentinel errors and the
// JSON response envelope.
//
// Services wrap these sentinels with context and handlers map them to HTTP
// status codes through pkg.Error:
//
//	return fmt.Errorf("%w: article not found", pkg.ErrNotFound)
//
// errors.Is keeps working through the wrap, so the handler can still answer 404.
package pkg

import "errors"

var (
	// ErrNotFound is returned when a referenced user, article or thread does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers missing, malformed and expired credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists signals a uniqueness conflict (duplicate email, duplicate article).
	ErrAlreadyExists = errors.New("already exists")

	// ErrBadRequest is the validation failure, raised before anything is persisted.
	ErrBadRequest = errors.New("bad request")

	// ErrTooManyRequests is raised by the rate limiters.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnavailable means an external collaborator is not configured or failed.
	ErrUnavailable = errors.New("service unavailable")

	// ErrInternal is the generic failure; anything unrecognised maps here too.
	ErrInternal = errors.New("internal error")
)
