package auth

import (
	"github.com/jrsteele09/estate-client/token"
	"github.com/jrsteele09/estate-client/users"
)

// Backend routes under the /auth prefix.
const (
	loginRoute          = "/auth/login"
	registerRoute       = "/auth/register"
	logoutRoute         = "/auth/logout"
	refreshRoute        = "/auth/refresh"
	meRoute             = "/auth/me"
	csrfTokenRoute      = "/auth/csrf-token"
	changePasswordRoute = "/auth/change-password"
	forgotPasswordRoute = "/auth/forgot-password"
	resetPasswordRoute  = "/auth/reset-password"
	sessionsRoute       = "/auth/sessions"
)

// LoginResult is what a successful login yields.
type LoginResult struct {
	User      users.Profile
	Pair      token.Pair
	CSRFToken string
}

// RegisterRequest carries the sign-up form. Role defaults to client.
type RegisterRequest struct {
	Email         string         `json:"email"`
	Username      string         `json:"username,omitempty"`
	Password      string         `json:"password"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Phone         string         `json:"phone,omitempty"`
	Role          users.RoleType `json:"role"`
	Company       string         `json:"company,omitempty"`
	JobTitle      string         `json:"job_title,omitempty"`
	LicenseNumber string         `json:"license_number,omitempty"`
	Bio           string         `json:"bio,omitempty"`
}

// RegisterResult is the confirmation returned by sign-up. Registration never
// logs the user in.
type RegisterResult struct {
	Message   string         `json:"message"`
	User      map[string]any `json:"user"`
	NextSteps []string       `json:"next_steps"`
}

// ProfileUpdate holds the fields to change. Nil fields are left as they are.
type ProfileUpdate struct {
	FirstName     *string        `json:"first_name,omitempty"`
	LastName      *string        `json:"last_name,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Company       *string        `json:"company,omitempty"`
	JobTitle      *string        `json:"job_title,omitempty"`
	LicenseNumber *string        `json:"license_number,omitempty"`
	Bio           *string        `json:"bio,omitempty"`
	AvatarURL     *string        `json:"avatar_url,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil &&
		u.Company == nil && u.JobTitle == nil && u.LicenseNumber == nil &&
		u.Bio == nil && u.AvatarURL == nil && len(u.Preferences) == 0
}

// MessageResult is the plain acknowledgement most mutating calls return.
type MessageResult struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	RememberMe bool           `json:"remember_me"`
	DeviceInfo map[string]any `json:"device_info,omitempty"`
}

type loginResponse struct {
	User      users.Profile  `json:"user"`
	Tokens    token.Response `json:"tokens"`
	CSRFToken string         `json:"csrf_token"`
}

type csrfResponse struct {
	CSRFToken string `json:"csrf_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}
