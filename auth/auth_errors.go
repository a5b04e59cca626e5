package auth

import (
	"github.com/jrsteele09/estate-client/internal/errors"
)

// Messages returned when validation fails before a request is sent.
var (
	EmailRequiredErr        = errors.Validationf("email is required")
	PasswordRequiredErr     = errors.Validationf("password is required")
	FirstNameRequiredErr    = errors.Validationf("first name is required")
	LastNameRequiredErr     = errors.Validationf("last name is required")
	ResetTokenRequiredErr   = errors.Validationf("reset token is required")
	NothingToUpdateErr      = errors.Validationf("no profile fields to update")
	RefreshTokenRequiredErr = errors.Wrapf(errors.ErrInvalidRefreshToken, "refresh token is empty")
)
