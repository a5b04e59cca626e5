package guard

import "github.com/jrsteele09/estate-client/users"

const (
	LoginPath          = "/login"
	RegisterPath       = "/register"
	ForgotPasswordPath = "/forgot-password"
	ResetPasswordPath  = "/reset-password"
	DashboardPath      = "/dashboard"
	ChatPath           = "/dashboard/chat"
	ProfilePath        = "/profile"
	SessionsPath       = "/profile/sessions"
	PropertiesPath     = "/properties"
	PropertyEditPath   = "/properties/edit"
	AdminPath          = "/admin"
	AdminUsersPath     = "/admin/users"
)

// Routes the client knows about.
var (
	LoginRoute          = Route{Path: LoginPath, Requirement: MustBeLoggedOut}
	RegisterRoute       = Route{Path: RegisterPath, Requirement: MustBeLoggedOut}
	ForgotPasswordRoute = Route{Path: ForgotPasswordPath, Requirement: MustBeLoggedOut}
	ResetPasswordRoute  = Route{Path: ResetPasswordPath, Requirement: MustBeLoggedOut}
	DashboardRoute      = Route{Path: DashboardPath, Requirement: MustBeLoggedIn}
	ChatRoute           = Route{Path: ChatPath, Requirement: MustBeLoggedIn}
	ProfileRoute        = Route{Path: ProfilePath, Requirement: MustBeLoggedIn}
	SessionsRoute       = Route{Path: SessionsPath, Requirement: MustBeLoggedIn}
	PropertiesRoute     = Route{Path: PropertiesPath, Requirement: MustBeLoggedIn}
	PropertyEditRoute   = Route{
		Path:        PropertyEditPath,
		Requirement: MustBeLoggedIn,
		Roles:       []users.RoleType{users.RoleAgent, users.RoleAdmin},
	}
	AdminRoute = Route{
		Path:        AdminPath,
		Requirement: MustBeLoggedIn,
		Roles:       []users.RoleType{users.RoleAdmin},
	}
	// Changing accounts needs the user-management grant on top of the role.
	AdminUsersRoute = Route{
		Path:        AdminUsersPath,
		Requirement: MustBeLoggedIn,
		Roles:       []users.RoleType{users.RoleAdmin},
		Permissions: []users.Permission{users.PermissionManageUsers},
	}
)
