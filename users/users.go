package users

import (
	"strings"

	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/internal/utils"
)

// RoleType is one of the four roles the backend assigns to an account.
type RoleType string

const (
	RoleClient   RoleType = "client"   // Buyers and tenants browsing properties
	RoleAgent    RoleType = "agent"    // Licensed agents managing listings and deals
	RoleEmployee RoleType = "employee" // Back-office staff following internal procedures
	RoleAdmin    RoleType = "admin"    // System administrators
)

// AllRoles lists the roles in the order the registration form offers them.
var AllRoles = []RoleType{RoleClient, RoleAgent, RoleEmployee, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Permission is a fine-grained capability string, checked independently of
// role. The backend names them <action>_<resource>.
type Permission string

const (
	PermissionManageUsers   Permission = "manage_users"
	PermissionReadAnalytics Permission = "read_analytics"
)

const minPasswordLength = 8

// Profile is the current user as returned by the backend.
type Profile struct {
	ID            int64        `json:"id"`
	UUID          string       `json:"uuid,omitempty"`
	Email         string       `json:"email"`
	Username      string       `json:"username"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Phone         string       `json:"phone,omitempty"`
	Company       string       `json:"company,omitempty"`
	JobTitle      string       `json:"job_title,omitempty"`
	LicenseNumber string       `json:"license_number,omitempty"`
	Bio           string       `json:"bio,omitempty"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	IsActive      bool         `json:"is_active"`
	IsVerified    bool         `json:"is_verified"`
	Roles         []RoleType   `json:"roles"`
	Permissions   []Permission `json:"permissions"`
	CreatedAt     utils.Time   `json:"created_at"`
	LastLogin     utils.Time   `json:"last_login"`
}

// DisplayName returns "First Last", falling back to the username.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// PrimaryRole is the role the dashboard opens with: the first role the server
// lists, or fallback when the profile carries none.
func (p *Profile) PrimaryRole(fallback RoleType) RoleType {
	if p == nil || len(p.Roles) == 0 {
		return fallback
	}
	return p.Roles[0]
}

// Merge overlays the non-zero fields of updated onto a copy of p. Fields the
// server left empty keep their current value.
func (p Profile) Merge(updated Profile) Profile {
	merged := p
	mergeString(&merged.UUID, updated.UUID)
	mergeString(&merged.Email, updated.Email)
	mergeString(&merged.Username, updated.Username)
	mergeString(&merged.FirstName, updated.FirstName)
	mergeString(&merged.LastName, updated.LastName)
	mergeString(&merged.Phone, updated.Phone)
	mergeString(&merged.Company, updated.Company)
	mergeString(&merged.JobTitle, updated.JobTitle)
	mergeString(&merged.LicenseNumber, updated.LicenseNumber)
	mergeString(&merged.Bio, updated.Bio)
	mergeString(&merged.AvatarURL, updated.AvatarURL)
	if updated.ID != 0 {
		merged.ID = updated.ID
	}
	if updated.Roles != nil {
		merged.Roles = append([]RoleType(nil), updated.Roles...)
	}
	if updated.Permissions != nil {
		merged.Permissions = append([]Permission(nil), updated.Permissions...)
	}
	if !updated.CreatedAt.IsZero() {
		merged.CreatedAt = updated.CreatedAt
	}
	if !updated.LastLogin.IsZero() {
		merged.LastLogin = updated.LastLogin
	}
	return merged
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// ValidatePassword applies the backend's password rule before a request is sent.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.Validationf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// ValidateEmail performs the same basic format check the login form does.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.Validationf("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return errors.Validationf("invalid email format")
	}
	return nil
}
