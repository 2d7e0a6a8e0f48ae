package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kir-gadjello/unichat/session"
)

type palette struct {
	text, dim, accent, user, err, success lipgloss.Color
}

var palettes = map[session.Theme]palette{
	session.ThemeDark: {
		text:    lipgloss.Color("252"),
		dim:     lipgloss.Color("240"),
		accent:  lipgloss.Color("#7D56F4"),
		user:    lipgloss.Color("51"),
		err:     lipgloss.Color("#FF5F87"),
		success: lipgloss.Color("#04B575"),
	},
	session.ThemeLight: {
		text:    lipgloss.Color("235"),
		dim:     lipgloss.Color("245"),
		accent:  lipgloss.Color("#5A3FC0"),
		user:    lipgloss.Color("25"),
		err:     lipgloss.Color("#D70000"),
		success: lipgloss.Color("#008700"),
	},
}

// Styles is the lipgloss style set of one theme.
type Styles struct {
	Theme session.Theme

	TopBar     lipgloss.Style
	TopBarMode lipgloss.Style
	Dim        lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	Error          lipgloss.Style
	WelcomeTitle   lipgloss.Style
	Caption        lipgloss.Style

	Spinner lipgloss.Style
	Modal   lipgloss.Style
	Input   lipgloss.Style

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

func NewStyles(theme session.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[session.ThemeDark]
	}

	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return Styles{
		Theme: theme,

		TopBar:     lipgloss.NewStyle().Foreground(p.text).Padding(0, 1),
		TopBarMode: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).Background(p.accent).Padding(0, 1).Bold(true),
		Dim:        lipgloss.NewStyle().Foreground(p.dim),

		UserLabel:      lipgloss.NewStyle().Foreground(p.user).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		UserText:       lipgloss.NewStyle().Foreground(p.text),
		Error: lipgloss.NewStyle().
			Foreground(p.err).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.err).
			Padding(0, 1),
		WelcomeTitle: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Caption:      lipgloss.NewStyle().Foreground(p.text),

		Spinner: lipgloss.NewStyle().Foreground(p.accent),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(p.dim),

		ToastInfo:    toast.Foreground(lipgloss.Color("#FFF")).Background(p.accent),
		ToastSuccess: toast.Foreground(lipgloss.Color("#FFF")).Background(p.success),
		ToastError:   toast.Foreground(lipgloss.Color("#FFF")).Background(p.err),
	}
}

func (s Styles) Toast(t session.Toast) string {
	switch t.Kind {
	case session.ToastSuccess:
		return s.ToastSuccess.Render(t.Text)
	case session.ToastError:
		return s.ToastError.Render(t.Text)
	}
	return s.ToastInfo.Render(t.Text)
}
