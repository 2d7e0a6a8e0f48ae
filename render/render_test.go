package render

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/kir-gadjello/unichat/session"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	require.Equal(t, "red\nline", Escape("\x1b[31mred\x1b[0m\r\nline\a"))
	require.Equal(t, "a\tb", Escape("a\tb"))
	require.Equal(t, "<b>&</b>", Escape("<b>&</b>"))
}

func TestSplitFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []segment
	}{
		{"prose only", "hello", []segment{{text: "hello"}}},
		{"code between prose", "Intro\n```go\nfmt.Println()\n```\nOutro", []segment{
			{text: "Intro"},
			{code: true, lang: "go", text: "fmt.Println()"},
			{text: "Outro"},
		}},
		{"only code", "```py\nx = 1\n```", []segment{{code: true, lang: "py", text: "x = 1"}}},
		{"unterminated", "a\n```\nb", []segment{{text: "a"}, {code: true, text: "b"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, splitFences(tc.in))
		})
	}
}

type tagMarkdown struct{}

func (tagMarkdown) Render(text string, _ int, _ session.Theme) string { return "<md>" + text + "</md>" }

type tagHighlighter struct{}

func (tagHighlighter) Highlight(code, lang string, _ session.Theme) string {
	return "[" + lang + "]" + code
}

func TestFormatter(t *testing.T) {
	text := "Intro\n```go\nfmt.Println()\n```\nOutro"

	f := Formatter{Markdown: tagMarkdown{}, Highlighter: tagHighlighter{}}
	require.Equal(t, "<md>Intro</md>\n\n[go]fmt.Println()\n\n<md>Outro</md>", f.Format(text, 80, session.ThemeDark))

	noHL := Formatter{Markdown: tagMarkdown{}}
	require.Equal(t, "<md>"+text+"</md>", noHL.Format(text, 80, session.ThemeDark))

	require.Equal(t, "plain", Formatter{}.Format("plain", 80, session.ThemeDark))
}

func TestPlain(t *testing.T) {
	require.Equal(t, "aaa bbb\nccc", Plain{}.Render("aaa bbb ccc", 7, session.ThemeDark))
	require.Equal(t, "line1\nline2", Plain{}.Render("line1\nline2", 0, session.ThemeLight))
}

func TestNewMarkdown(t *testing.T) {
	for _, name := range append(Renderers, "") {
		md, err := NewMarkdown(name)
		require.NoError(t, err)
		require.NotNil(t, md)
	}
	_, err := NewMarkdown("html")
	require.Error(t, err)
}

func TestTermMarkdown(t *testing.T) {
	md := NewTermMarkdown()
	out := md.Render("some **bold** text", 40, session.ThemeDark)
	require.Contains(t, ansi.Strip(out), "bold")
	require.Equal(t, out, md.Render("some **bold** text", 40, session.ThemeDark))
}

func TestGlamour(t *testing.T) {
	md := NewGlamour()
	for _, theme := range []session.Theme{session.ThemeDark, session.ThemeLight} {
		out := md.Render("# Title\n\nbody", 40, theme)
		require.Contains(t, ansi.Strip(out), "Title")
		require.Contains(t, ansi.Strip(out), "body")
	}
}

func TestChroma(t *testing.T) {
	for _, theme := range []session.Theme{session.ThemeDark, session.ThemeLight} {
		out := Chroma{}.Highlight("x = 1", "python", theme)
		require.Equal(t, "x = 1", strings.TrimSpace(ansi.Strip(out)))
	}
	require.Equal(t, "x", NoHighlight{}.Highlight("x\x1b[2J", "", session.ThemeDark))
}

func TestHalfBlocks(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 4, 2))
	wide.Set(0, 0, color.RGBA{R: 255, A: 255})
	out := ansi.Strip(HalfBlocks(wide, 4, 10, termenv.Ascii))
	require.Equal(t, "▀▀▀▀", out)

	tall := image.NewRGBA(image.Rect(0, 0, 10, 40))
	lines := strings.Split(ansi.Strip(HalfBlocks(tall, 20, 5, termenv.Ascii)), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		require.Equal(t, "▀▀", l)
	}

	require.Empty(t, HalfBlocks(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10, termenv.Ascii))
	require.Contains(t, HalfBlocks(wide, 4, 10, termenv.TrueColor), "\x1b[")
}

func TestPane(t *testing.T) {
	entries := []session.Entry{
		session.WelcomeEntry(),
		{Kind: session.EntryUser, Text: "hello"},
		{Kind: session.EntryAssistant, Text: "hi there"},
		{Kind: session.EntryTyping},
		{Kind: session.EntryError, Text: "rate limited"},
		{Kind: session.EntryImage, Image: &session.ImageResult{URL: "https://img/x.png", Prompt: "cat", Model: "pollinations"}},
	}
	out := ansi.Strip(Pane(entries, PaneOptions{
		Width:       60,
		Styles:      NewStyles(session.ThemeDark),
		Formatter:   Formatter{Markdown: Plain{}},
		TypingFrame: "⣾",
		Profile:     termenv.Ascii,
	}))

	for _, want := range []string{
		"Unified AI Chatbot", "👤 You", "hello", "🤖 Assistant", "hi there",
		"🤖 ⣾", "rate limited", "Image load failed", "Prompt: cat",
		"Model: pollinations", "https://img/x.png",
	} {
		require.Contains(t, out, want)
	}
}

func TestStylesToast(t *testing.T) {
	s := NewStyles(session.ThemeLight)
	for _, kind := range []session.ToastKind{session.ToastInfo, session.ToastSuccess, session.ToastError} {
		out := s.Toast(session.Toast{Text: "Saved", Kind: kind})
		require.Contains(t, ansi.Strip(out), "Saved")
	}
}
