package cli

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/estate-client/auth"
	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/users"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var (
		email      string
		password   string
		rememberMe bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&rememberMe, "remember-me", app.cfg.GetRememberMe(), "ask the server for a longer session")

	cmd.RunE = app.guarded(guard.LoginRoute, func(cmd *cobra.Command, args []string) error {
		return app.interactiveLogin(cmd, email, password, rememberMe)
	})
	return cmd
}

func (a *App) interactiveLogin(cmd *cobra.Command, email, password string, rememberMe bool) error {
	var err error
	if email == "" {
		if email, err = a.prompt("Email"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = a.prompt("Password"); err != nil {
			return err
		}
	}

	user, err := a.session.Login(cmd.Context(), email, password, rememberMe)
	if err != nil {
		return err
	}
	role := user.PrimaryRole(users.RoleType(a.cfg.GetDefaultRole()))
	t := themeFor(role)
	a.printf("%s %s\n", t.successStyle().Render("Welcome, "+user.DisplayName()+"!"), t.renderRole(role))
	return nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session here and on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Initialize(cmd.Context())
			app.session.Logout(cmd.Context())
			app.println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = app.guarded(guard.ProfileRoute, func(cmd *cobra.Command, args []string) error {
		u := app.session.User()
		role := u.PrimaryRole(users.RoleType(app.cfg.GetDefaultRole()))
		t := themeFor(role)
		app.printf("%s %s\n", t.titleStyle().Render(u.DisplayName()), t.renderRole(role))
		app.printf("  email:       %s\n", u.Email)
		app.printf("  username:    %s\n", u.Username)
		app.printf("  roles:       %s\n", strings.Join(u.RoleNames(), ", "))
		if len(u.Permissions) > 0 {
			perms := make([]string, 0, len(u.Permissions))
			for _, p := range u.Permissions {
				perms = append(perms, string(p))
			}
			app.printf("  permissions: %s\n", strings.Join(perms, ", "))
		}
		if due, ok := app.session.RefreshDueAt(); ok {
			app.printf("  %s\n", t.hintStyle().Render("token refresh due "+due.Local().Format("15:04:05")))
		}
		return nil
	})
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var req auth.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Username, "username", "", "username (defaults to the email's local part)")
	f.StringVar(&req.Password, "password", "", "password, at least 8 characters")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&role, "role", string(users.RoleClient), "one of client, agent, employee, admin")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&req.Company, "company", "", "company")
	f.StringVar(&req.JobTitle, "job-title", "", "job title")
	f.StringVar(&req.LicenseNumber, "license-number", "", "agent license number")
	f.StringVar(&req.Bio, "bio", "", "short bio")

	cmd.RunE = app.guarded(guard.RegisterRoute, func(cmd *cobra.Command, args []string) error {
		req.Role = users.RoleType(role)
		result, err := app.auth.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		app.println(themeFor(req.Role).successStyle().Render(result.Message))
		for _, step := range result.NextSteps {
			app.printf("  • %s\n", step)
		}
		app.println("Run `estate login` to sign in.")
		return nil
	})
	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags you pass are sent",
		Args:  cobra.NoArgs,
	}
	fields := map[string]*string{}
	for _, name := range []string{"first-name", "last-name", "phone", "company", "job-title", "license-number", "bio", "avatar-url"} {
		fields[name] = update.Flags().String(name, "", name)
	}
	update.RunE = app.guarded(guard.ProfileRoute, func(cmd *cobra.Command, args []string) error {
		changed := func(name string) *string {
			if cmd.Flags().Changed(name) {
				v := *fields[name]
				return &v
			}
			return nil
		}
		profile, err := app.session.UpdateProfile(cmd.Context(), auth.ProfileUpdate{
			FirstName:     changed("first-name"),
			LastName:      changed("last-name"),
			Phone:         changed("phone"),
			Company:       changed("company"),
			JobTitle:      changed("job-title"),
			LicenseNumber: changed("license-number"),
			Bio:           changed("bio"),
			AvatarURL:     changed("avatar-url"),
		})
		if err != nil {
			return err
		}
		app.printf("Profile updated for %s.\n", profile.DisplayName())
		return nil
	})

	cmd.AddCommand(update)
	return cmd
}

func newPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change, or recover, your password",
	}

	var current, next string
	change := &cobra.Command{Use: "change", Short: "Change your password", Args: cobra.NoArgs}
	change.Flags().StringVar(&current, "current", "", "current password")
	change.Flags().StringVar(&next, "new", "", "new password")
	change.RunE = app.guarded(guard.ProfileRoute, func(cmd *cobra.Command, args []string) error {
		result, err := app.auth.ChangePassword(cmd.Context(), current, next)
		if err != nil {
			return err
		}
		app.println(result.Message)
		return nil
	})

	var email string
	forgot := &cobra.Command{Use: "forgot", Short: "Request a reset link by email", Args: cobra.NoArgs}
	forgot.Flags().StringVar(&email, "email", "", "account email")
	forgot.RunE = app.guarded(guard.ForgotPasswordRoute, func(cmd *cobra.Command, args []string) error {
		result, err := app.auth.ForgotPassword(cmd.Context(), email)
		if err != nil {
			return err
		}
		app.println(result.Message)
		return nil
	})

	var resetToken, resetNew string
	reset := &cobra.Command{Use: "reset", Short: "Set a new password with a reset token", Args: cobra.NoArgs}
	reset.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	reset.Flags().StringVar(&resetNew, "new", "", "new password")
	reset.RunE = app.guarded(guard.ResetPasswordRoute, func(cmd *cobra.Command, args []string) error {
		result, err := app.auth.ResetPassword(cmd.Context(), resetToken, resetNew)
		if err != nil {
			return err
		}
		app.println(result.Message)
		return nil
	})

	cmd.AddCommand(change, forgot, reset)
	return cmd
}

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and revoke your signed-in devices",
	}

	list := &cobra.Command{Use: "list", Short: "List active sessions", Args: cobra.NoArgs}
	list.RunE = app.guarded(guard.SessionsRoute, func(cmd *cobra.Command, args []string) error {
		records, err := app.auth.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			app.println("No active sessions.")
			return nil
		}
		for _, r := range records {
			agent := r.UserAgent()
			if agent == "" {
				agent = "unknown device"
			}
			app.printf("%6d  %-24s  %-15s  last seen %s\n", r.ID, agent, r.IPAddress, r.LastAccessed.Local().Format("2006-01-02 15:04"))
		}
		return nil
	})

	revoke := &cobra.Command{Use: "revoke <id>", Short: "Revoke one session", Args: cobra.ExactArgs(1)}
	revoke.RunE = app.guarded(guard.SessionsRoute, func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		result, err := app.auth.RevokeSession(cmd.Context(), id)
		if err != nil {
			return err
		}
		app.println(result.Message)
		return nil
	})

	var keepCurrent bool
	revokeAll := &cobra.Command{Use: "revoke-all", Short: "Revoke every session", Args: cobra.NoArgs}
	revokeAll.Flags().BoolVar(&keepCurrent, "keep-current", true, "keep this device signed in")
	revokeAll.RunE = app.guarded(guard.SessionsRoute, func(cmd *cobra.Command, args []string) error {
		result, err := app.auth.RevokeAllSessions(cmd.Context(), keepCurrent)
		if err != nil {
			return err
		}
		app.println(result.Message)
		if !keepCurrent {
			app.session.Logout(cmd.Context())
		}
		return nil
	})

	cmd.AddCommand(list, revoke, revokeAll)
	return cmd
}
