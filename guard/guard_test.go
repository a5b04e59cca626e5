package guard_test

import (
	"testing"

	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/users"
	"github.com/stretchr/testify/require"
)

func profile(roles ...users.RoleType) *users.Profile {
	return &users.Profile{ID: 1, Roles: roles}
}

func TestEvaluate(t *testing.T) {
	client := profile(users.RoleClient)
	agent := profile(users.RoleAgent)
	admin := profile(users.RoleAdmin)

	tests := []struct {
		name string
		in   guard.Input
		want guard.Outcome
	}{
		{"loading wins over everything", guard.Input{IsLoading: true, IsAuthenticated: true, User: client, Route: guard.AdminRoute}, guard.ShowLoading},
		{"public route for a guest", guard.Input{Route: guard.Route{Path: "/about"}}, guard.Allow},
		{"protected route for a guest", guard.Input{Route: guard.ChatRoute}, guard.RedirectLogin},
		{"role route implies login", guard.Input{Route: guard.Route{Path: "/x", Roles: []users.RoleType{users.RoleAgent}}}, guard.RedirectLogin},
		{"login page for a signed-in user", guard.Input{IsAuthenticated: true, User: client, Route: guard.LoginRoute}, guard.RedirectDashboard},
		{"login page for a guest", guard.Input{Route: guard.LoginRoute}, guard.Allow},
		{"client on the admin panel", guard.Input{IsAuthenticated: true, User: client, Route: guard.AdminRoute}, guard.AccessDenied},
		{"admin on the admin panel", guard.Input{IsAuthenticated: true, User: admin, Route: guard.AdminRoute}, guard.Allow},
		{"agent may edit listings", guard.Input{IsAuthenticated: true, User: agent, Route: guard.PropertyEditRoute}, guard.Allow},
		{"client may not edit listings", guard.Input{IsAuthenticated: true, User: client, Route: guard.PropertyEditRoute}, guard.AccessDenied},
		{"admin without the user grant", guard.Input{IsAuthenticated: true, User: admin, Route: guard.AdminUsersRoute}, guard.AccessDenied},
		{"any signed-in user may chat", guard.Input{IsAuthenticated: true, User: client, Route: guard.ChatRoute}, guard.Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guard.Evaluate(tt.in).Outcome)
		})
	}
}

func TestEvaluate_ReturnTo(t *testing.T) {
	d := guard.Evaluate(guard.Input{Route: guard.ChatRoute, RequestedLocation: "/dashboard/chat?tab=uploads"})
	require.Equal(t, guard.RedirectLogin, d.Outcome)
	require.Equal(t, "/dashboard/chat?tab=uploads", d.ReturnTo)

	d = guard.Evaluate(guard.Input{Route: guard.ChatRoute})
	require.Equal(t, guard.ChatPath, d.ReturnTo)
}

func TestEvaluate_AccessDeniedDetail(t *testing.T) {
	d := guard.Evaluate(guard.Input{IsAuthenticated: true, User: profile(users.RoleClient), Route: guard.AdminRoute})

	require.Equal(t, guard.AccessDenied, d.Outcome)
	require.Equal(t, []users.RoleType{users.RoleAdmin}, d.RequiredRoles)
	require.Equal(t, []users.RoleType{users.RoleClient}, d.ActualRoles)
	require.Equal(t, "Access denied: requires role admin (you have: client)", d.Message())

	d = guard.Evaluate(guard.Input{IsAuthenticated: true, User: profile(), Route: guard.PropertyEditRoute})
	require.Equal(t, "Access denied: requires role agent or admin (you have: none)", d.Message())
}

func TestEvaluate_Permissions(t *testing.T) {
	route := guard.Route{
		Path:        "/reports",
		Requirement: guard.MustBeLoggedIn,
		Permissions: []users.Permission{"read_reports", "export_reports"},
	}
	user := &users.Profile{Roles: []users.RoleType{users.RoleEmployee}, Permissions: []users.Permission{"read_reports"}}

	d := guard.Evaluate(guard.Input{IsAuthenticated: true, User: user, Route: route})
	require.Equal(t, guard.AccessDenied, d.Outcome)
	require.Equal(t, []users.Permission{"export_reports"}, d.MissingPermissions)
	require.Equal(t, "Access denied: missing permission export_reports (you have roles: employee)", d.Message())

	user.Permissions = append(user.Permissions, "export_reports")
	require.Equal(t, guard.Allow, guard.Evaluate(guard.Input{IsAuthenticated: true, User: user, Route: route}).Outcome)
}

func TestDecision_MessageOnlyForDenied(t *testing.T) {
	require.Empty(t, guard.Decision{Outcome: guard.Allow}.Message())
	require.Equal(t, "redirect_login", guard.RedirectLogin.String())
}

func TestEvaluate_AdminUsersRoute(t *testing.T) {
	admin := &users.Profile{Roles: []users.RoleType{users.RoleAdmin}}

	d := guard.Evaluate(guard.Input{IsAuthenticated: true, User: admin, Route: guard.AdminUsersRoute})
	require.Equal(t, guard.AccessDenied, d.Outcome)
	require.Equal(t, []users.Permission{users.PermissionManageUsers}, d.MissingPermissions)
	require.Equal(t, "Access denied: missing permission manage_users (you have roles: admin)", d.Message())

	admin.Permissions = []users.Permission{users.PermissionManageUsers}
	require.Equal(t, guard.Allow, guard.Evaluate(guard.Input{IsAuthenticated: true, User: admin, Route: guard.AdminUsersRoute}).Outcome)

	agent := &users.Profile{Roles: []users.RoleType{users.RoleAgent}, Permissions: []users.Permission{users.PermissionManageUsers}}
	require.Equal(t, guard.AccessDenied, guard.Evaluate(guard.Input{IsAuthenticated: true, User: agent, Route: guard.AdminUsersRoute}).Outcome)
}
