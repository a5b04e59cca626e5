package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/estate-client/chat"
	"github.com/jrsteele09/estate-client/users"
)

// Theme holds the colours for one role's chat view.
type Theme struct {
	Accent  lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Success lipgloss.Color
}

var baseTheme = Theme{
	Accent:  lipgloss.Color("#2563EB"),
	Error:   lipgloss.Color("#FF005F"),
	Hint:    lipgloss.Color("#6C6C6C"),
	Success: lipgloss.Color("#00D787"),
}

func themeFor(role users.RoleType) Theme {
	t := baseTheme
	t.Accent = lipgloss.Color(chat.ProfileFor(role).Color)
	return t
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

func (t Theme) badgeStyle(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(bg).
		Padding(0, 1).
		Bold(true)
}

var badges = map[chat.Flag]struct {
	label string
	color lipgloss.Color
}{
	chat.FlagMilestone:           {label: "🏆 Milestone", color: lipgloss.Color("#D97706")},
	chat.FlagCulturalRecognition: {label: "🎵 Recognition", color: lipgloss.Color("#059669")},
	chat.FlagAdminPanel:          {label: "📊 Admin Panel", color: lipgloss.Color("#7C3AED")},
}

func (t Theme) renderBadges(flags chat.Flags) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		b, ok := badges[f]
		if !ok {
			continue
		}
		parts = append(parts, t.badgeStyle(b.color).Render(b.label))
	}
	return strings.Join(parts, " ")
}

func (t Theme) renderMessage(m chat.RenderedMessage) string {
	var sb strings.Builder
	if m.Sender == chat.SenderUser {
		sb.WriteString(t.userStyle().Render("you › "))
	} else {
		sb.WriteString(t.titleStyle().Render("assistant › "))
	}
	sb.WriteString(m.Text)
	if badges := t.renderBadges(m.Flags); badges != "" {
		sb.WriteString("\n")
		sb.WriteString(badges)
	}
	if len(m.Sources) > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.hintStyle().Render(fmt.Sprintf("sources: %s", strings.Join(m.Sources, ", "))))
	}
	return sb.String()
}

func (t Theme) renderRole(role users.RoleType) string {
	p := chat.ProfileFor(role)
	return t.badgeStyle(t.Accent).Render(strings.ToUpper(string(p.Role))) + " " + t.titleStyle().Render(p.Title)
}
