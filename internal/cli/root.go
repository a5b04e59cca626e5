package cli

import (
	"fmt"

	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd builds the command tree over app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "estate",
		Short: "Real estate assistant client",
		Long: `estate signs you in to the real estate assistant backend, keeps the
session fresh, and gives you a role-aware chat with property search,
document upload and account management.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRegisterCmd(app),
		newProfileCmd(app),
		newPasswordCmd(app),
		newSessionsCmd(app),
		newChatCmd(app),
		newUploadCmd(app),
		newPropertiesCmd(app),
		newAdminCmd(app),
	)
	return root
}

type runFunc func(cmd *cobra.Command, args []string) error

// guarded restores the session, then runs next only if route allows it. A
// command that needs a login prompts for one and carries on afterwards.
func (a *App) guarded(route guard.Route, next runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a.session.Initialize(ctx)

		decision := a.evaluate(route)
		if decision.Outcome == guard.RedirectLogin {
			a.println(themeFor("").hintStyle().Render(fmt.Sprintf("Login required for %s.", decision.ReturnTo)))
			if err := a.interactiveLogin(cmd, "", "", false); err != nil {
				return err
			}
			decision = a.evaluate(route)
		}

		switch decision.Outcome {
		case guard.Allow:
			return next(cmd, args)
		case guard.RedirectDashboard:
			a.printf("Already logged in as %s.\n", a.session.User().DisplayName())
			return nil
		case guard.AccessDenied:
			a.println(themeFor("").errorStyle().Render(decision.Message()))
			return errors.ErrAccessDenied
		case guard.ShowLoading:
			return fmt.Errorf("session is still loading")
		default:
			return errors.ErrNotAuthenticated
		}
	}
}

func (a *App) evaluate(route guard.Route) guard.Decision {
	snap := a.session.Snapshot()
	return guard.Evaluate(guard.Input{
		IsLoading:         snap.IsLoading(),
		IsAuthenticated:   snap.IsAuthenticated(),
		Route:             route,
		User:              snap.User,
		RequestedLocation: route.Path,
	})
}

// Failure renders err for the terminal.
func Failure(err error) string {
	return themeFor("").errorStyle().Render("Error: " + api.DisplayMessage(err))
}
