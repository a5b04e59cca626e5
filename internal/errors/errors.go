package errors

import (
	"errors"
	"fmt"
)

// Common error types for the estate client
var (
	// Validation errors, raised before anything reaches the network
	ErrValidation = errors.New("validation failed")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrNoCredentials       = errors.New("no stored credentials")
	ErrSessionChanged      = errors.New("session changed while the request was in flight")

	// Authorization errors
	ErrAccessDenied = errors.New("access denied")

	// Conversation errors
	ErrSendInFlight  = errors.New("a message is already being sent")
	ErrUploadFailed  = errors.New("file upload failed")
	ErrNoSessionUser = errors.New("conversation has no user")

	// Transport errors
	ErrNetwork  = errors.New("network error")
	ErrServer   = errors.New("server error")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// GenericMessage is shown when a failed response carries nothing readable.
const GenericMessage = "Something went wrong. Please try again."

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Validationf builds a field-scoped validation error that unwraps to ErrValidation.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join combines errs, dropping nils. It returns nil when nothing is left.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
