package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/kir-gadjello/unichat/session"
)

// Highlighter colours a code block. language may be empty.
type Highlighter interface {
	Highlight(code, language string, theme session.Theme) string
}

// NoHighlight returns code unchanged apart from escaping.
type NoHighlight struct{}

func (NoHighlight) Highlight(code, _ string, _ session.Theme) string { return Escape(code) }

// Chroma highlights with chroma's terminal256 formatter.
type Chroma struct{}

func (Chroma) Highlight(code, language string, theme session.Theme) string {
	code = Escape(code)

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	if theme == session.ThemeLight {
		styleName = "github"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	// drop the blank lines chroma appends
	lines := strings.Split(buf.String(), "\n")
	for len(lines) > 1 && strings.TrimSpace(ansi.Strip(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
