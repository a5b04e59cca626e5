package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/jrsteele09/estate-client/admin"
	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/users"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator tools: analytics, users and audit logs",
	}

	analytics := &cobra.Command{Use: "analytics", Short: "Show chat usage analytics", Args: cobra.NoArgs}
	analytics.RunE = app.guarded(guard.AdminRoute, func(cmd *cobra.Command, args []string) error {
		a, err := app.admin.Analytics(cmd.Context())
		if err != nil {
			return err
		}
		t := themeFor(users.RoleAdmin)
		app.println(t.titleStyle().Render("Admin Analytics Dashboard"))
		app.printf("  conversations: %d  messages: %d  health: %s\n", a.TotalConversations, a.TotalMessages, a.SystemHealth)
		for _, role := range slices.Sorted(maps.Keys(a.RoleDistribution)) {
			app.printf("  %-10s %d\n", role, a.RoleDistribution[role])
		}
		for _, act := range a.RecentActivity {
			app.println(t.hintStyle().Render("  [" + act.Role + "] " + act.SessionID + ": " + act.LastMessage))
		}
		return nil
	})

	var userFilter admin.UserFilter
	var active bool
	list := &cobra.Command{Use: "users", Short: "List accounts", Args: cobra.NoArgs}
	list.Flags().StringVar(&userFilter.Role, "role", "", "only this role")
	list.Flags().BoolVar(&active, "active", true, "only active (true) or inactive (false) accounts")
	list.Flags().IntVar(&userFilter.Skip, "skip", 0, "skip this many")
	list.Flags().IntVarP(&userFilter.Limit, "limit", "n", 0, "max results")
	list.RunE = app.guarded(guard.AdminRoute, func(cmd *cobra.Command, args []string) error {
		filter := userFilter
		if cmd.Flags().Changed("active") {
			filter.IsActive = &active
		}
		accounts, err := app.admin.ListUsers(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			app.println("No users found.")
			return nil
		}
		for _, u := range accounts {
			state := "active"
			if !u.IsActive {
				state = "inactive"
			}
			app.printf("%5d  %-30s  %-20s  %-8s  %s\n", u.ID, u.Email, u.DisplayName(), state, strings.Join(u.RoleNames(), ","))
		}
		return nil
	})

	deactivate := &cobra.Command{Use: "deactivate <user-id>", Short: "Disable an account and end its sessions", Args: cobra.ExactArgs(1)}
	deactivate.RunE = app.guarded(guard.AdminUsersRoute, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		msg, err := app.admin.DeactivateUser(cmd.Context(), id)
		if err != nil {
			return err
		}
		app.println(themeFor(users.RoleAdmin).successStyle().Render(msg))
		return nil
	})

	var auditFilter admin.AuditFilter
	audit := &cobra.Command{Use: "audit-logs", Short: "Show recorded actions, newest first", Args: cobra.NoArgs}
	audit.Flags().Int64Var(&auditFilter.UserID, "user", 0, "only actions by this user id")
	audit.Flags().StringVar(&auditFilter.Action, "action", "", "only this action")
	audit.Flags().IntVar(&auditFilter.Skip, "skip", 0, "skip this many")
	audit.Flags().IntVarP(&auditFilter.Limit, "limit", "n", 0, "max results")
	audit.RunE = app.guarded(guard.AdminRoute, func(cmd *cobra.Command, args []string) error {
		entries, err := app.admin.AuditLogs(cmd.Context(), auditFilter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			app.println("No audit entries.")
			return nil
		}
		for _, e := range entries {
			app.printf("%s  %-20s  %s %s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.ResourceType, e.ResourceID, e.IPAddress)
		}
		return nil
	})

	cmd.AddCommand(analytics, list, deactivate, audit)
	return cmd
}
