package auth

import (
	"strings"

	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/users"
)

// ValidateCredentials checks the login form before anything is sent.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return EmailRequiredErr
	}
	if err := users.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return PasswordRequiredErr
	}
	return nil
}

// Validate applies the backend's registration rules and defaults the role.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := users.ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := users.ValidatePassword(r.Password); err != nil {
		return err
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return FirstNameRequiredErr
	}
	if strings.TrimSpace(r.LastName) == "" {
		return LastNameRequiredErr
	}
	if r.Role == "" {
		r.Role = users.RoleClient
	}
	if !r.Role.Valid() {
		return errors.Validationf("role must be one of: %s", strings.Join(users.Names(users.AllRoles), ", "))
	}
	return nil
}

// ValidatePasswordChange checks a change-password request.
func ValidatePasswordChange(current, next string) error {
	if current == "" {
		return PasswordRequiredErr
	}
	return users.ValidatePassword(next)
}

// ValidatePasswordReset checks a reset-password request.
func ValidatePasswordReset(resetToken, next string) error {
	if strings.TrimSpace(resetToken) == "" {
		return ResetTokenRequiredErr
	}
	return users.ValidatePassword(next)
}
