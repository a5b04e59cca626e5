// Package guard decides whether a view may be shown for the current session.
package guard

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/estate-client/users"
)

// Requirement is the authentication state a route expects.
type Requirement int

const (
	Public          Requirement = iota // Anyone
	MustBeLoggedIn                     // Signed-in users only
	MustBeLoggedOut                    // Guests only (login, register)
)

// Route describes a navigable view and what it takes to open it.
type Route struct {
	Path        string
	Requirement Requirement
	Roles       []users.RoleType   // Any one of these is enough
	Permissions []users.Permission // All of these are needed
}

// Input is everything the decision depends on.
type Input struct {
	IsLoading         bool
	IsAuthenticated   bool
	Route             Route
	User              *users.Profile
	RequestedLocation string
}

// Outcome is what the caller should render.
type Outcome int

const (
	ShowLoading Outcome = iota
	RedirectLogin
	RedirectDashboard
	AccessDenied
	Allow
)

func (o Outcome) String() string {
	switch o {
	case ShowLoading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	case AccessDenied:
		return "access_denied"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict. ReturnTo is set on RedirectLogin; the role
// and permission fields are set on AccessDenied.
type Decision struct {
	Outcome            Outcome
	ReturnTo           string
	RequiredRoles      []users.RoleType
	ActualRoles        []users.RoleType
	MissingPermissions []users.Permission
}

// Evaluate applies, in order: loading, authentication requirement, role,
// permission. Requiring a role or permission implies requiring a login.
func Evaluate(in Input) Decision {
	if in.IsLoading {
		return Decision{Outcome: ShowLoading}
	}

	needsLogin := in.Route.Requirement == MustBeLoggedIn ||
		len(in.Route.Roles) > 0 || len(in.Route.Permissions) > 0

	if needsLogin && !in.IsAuthenticated {
		returnTo := in.RequestedLocation
		if returnTo == "" {
			returnTo = in.Route.Path
		}
		return Decision{Outcome: RedirectLogin, ReturnTo: returnTo}
	}
	if in.Route.Requirement == MustBeLoggedOut && in.IsAuthenticated {
		return Decision{Outcome: RedirectDashboard}
	}

	if missing := in.User.MissingRoles(in.Route.Roles); len(missing) > 0 {
		return Decision{
			Outcome:       AccessDenied,
			RequiredRoles: missing,
			ActualRoles:   actualRoles(in.User),
		}
	}
	if missing := in.User.MissingPermissions(in.Route.Permissions); len(missing) > 0 {
		return Decision{
			Outcome:            AccessDenied,
			ActualRoles:        actualRoles(in.User),
			MissingPermissions: missing,
		}
	}
	return Decision{Outcome: Allow}
}

// Message renders the access-denied explanation, or "" for other outcomes.
func (d Decision) Message() string {
	if d.Outcome != AccessDenied {
		return ""
	}
	actual := "none"
	if len(d.ActualRoles) > 0 {
		actual = strings.Join(users.Names(d.ActualRoles), ", ")
	}
	if len(d.RequiredRoles) > 0 {
		return fmt.Sprintf("Access denied: requires role %s (you have: %s)",
			strings.Join(users.Names(d.RequiredRoles), " or "), actual)
	}
	perms := make([]string, 0, len(d.MissingPermissions))
	for _, p := range d.MissingPermissions {
		perms = append(perms, string(p))
	}
	return fmt.Sprintf("Access denied: missing permission %s (you have roles: %s)", strings.Join(perms, ", "), actual)
}

func actualRoles(p *users.Profile) []users.RoleType {
	if p == nil {
		return nil
	}
	return append([]users.RoleType(nil), p.Roles...)
}
