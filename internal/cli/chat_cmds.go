package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/estate-client/chat"
	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/users"
	"github.com/spf13/cobra"
)

// newConversation starts a chat for the signed-in user in their primary role
// and drops it when the session ends.
func (a *App) newConversation() *chat.Conversation {
	user := a.session.User()
	role := user.PrimaryRole(users.RoleType(a.cfg.GetDefaultRole()))
	conv := chat.NewConversation(a.chat, user, role, chat.WithLogger(a.log))
	a.session.OnSessionEnd(conv.Discard)
	return conv
}

func newChatCmd(app *App) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant",
		Long: `Start an interactive chat. Inside the chat:
  /suggestions      list starter prompts for your role
  /suggest <n>      send starter prompt n
  /upload <files>   upload documents for the assistant to use
  /reset            clear the conversation
  /quit             leave`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "send one message and exit")

	cmd.RunE = app.guarded(guard.ChatRoute, func(cmd *cobra.Command, args []string) error {
		conv := app.newConversation()
		if message != "" {
			return app.sendAndRender(cmd.Context(), conv, func(ctx context.Context) (*chat.Message, error) {
				return conv.Send(ctx, message)
			})
		}
		return app.chatLoop(cmd.Context(), conv)
	})
	return cmd
}

func (a *App) chatLoop(ctx context.Context, conv *chat.Conversation) error {
	t := themeFor(conv.Role())
	profile := conv.Profile()

	a.displayAppname()
	a.println(t.renderRole(conv.Role()))
	a.println(t.hintStyle().Render(profile.Greeting + "Type a message, /suggestions for ideas, or /quit to leave."))

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := a.prompt(t.userStyle().Render(">"))
		if err != nil {
			return nil
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/suggestions":
			for i, s := range profile.Suggestions {
				a.printf("  %d. %s\n", i+1, s)
			}
		case strings.HasPrefix(line, "/suggest "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/suggest ")))
			if err != nil {
				a.println(t.errorStyle().Render("usage: /suggest <n>"))
				continue
			}
			_ = a.sendAndRender(ctx, conv, func(ctx context.Context) (*chat.Message, error) {
				return conv.SendSuggestion(ctx, n-1)
			})
		case strings.HasPrefix(line, "/upload "):
			a.uploadAndRender(ctx, conv, strings.Fields(strings.TrimPrefix(line, "/upload ")))
		case line == "/reset":
			if err := conv.Reset(ctx); err != nil {
				a.println(t.hintStyle().Render("Cleared locally; the server could not be reached."))
				continue
			}
			a.println(t.hintStyle().Render("Conversation cleared."))
		default:
			_ = a.sendAndRender(ctx, conv, func(ctx context.Context) (*chat.Message, error) {
				return conv.Send(ctx, line)
			})
		}

		if conv.SessionID() == "" {
			a.println(t.errorStyle().Render("Your session has ended. Please log in again."))
			return nil
		}
	}
}

// sendAndRender prints every message the send added, the user's own included,
// so badges on either side are shown.
func (a *App) sendAndRender(ctx context.Context, conv *chat.Conversation, send func(context.Context) (*chat.Message, error)) error {
	t := themeFor(conv.Role())
	before := len(conv.Messages())
	_, err := send(ctx)
	a.renderSince(t, conv, before)
	if err != nil {
		banner := conv.Banner()
		if banner == "" {
			banner = api.DisplayMessage(err)
		}
		a.println(t.errorStyle().Render(banner))
		return err
	}
	return nil
}

func (a *App) uploadAndRender(ctx context.Context, conv *chat.Conversation, paths []string) error {
	t := themeFor(conv.Role())
	before := len(conv.Messages())
	_, err := conv.UploadFiles(ctx, paths)
	a.renderSince(t, conv, before)
	if err != nil {
		a.println(t.errorStyle().Render(conv.Banner()))
	}
	return err
}

// renderSince prints the log from index from on. The log can shrink when the
// session ends mid-call.
func (a *App) renderSince(t Theme, conv *chat.Conversation, from int) {
	rendered := conv.Render()
	if from > len(rendered) {
		from = len(rendered)
	}
	for _, m := range rendered[from:] {
		a.println(t.renderMessage(m))
	}
}

func newUploadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents for the assistant",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = app.guarded(guard.ChatRoute, func(cmd *cobra.Command, args []string) error {
		return app.uploadAndRender(cmd.Context(), app.newConversation(), args)
	})
	return cmd
}

func (a *App) displayAppname() {
	myFigure := figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true)
	a.println(myFigure.String())
}
