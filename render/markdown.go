// Package render turns session entries into terminal text.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/kir-gadjello/unichat/session"
	"github.com/muesli/reflow/wordwrap"
	markdown "github.com/vlanse/go-term-markdown"
)

// Markdown renders markdown source for a terminal of the given width.
type Markdown interface {
	Render(text string, width int, theme session.Theme) string
}

const (
	RendererTermMD  = "termmd"
	RendererGlamour = "glamour"
	RendererPlain   = "plain"
)

var Renderers = []string{RendererTermMD, RendererGlamour, RendererPlain}

// NewMarkdown returns the renderer registered under name.
func NewMarkdown(name string) (Markdown, error) {
	switch name {
	case RendererTermMD, "":
		return NewTermMarkdown(), nil
	case RendererGlamour:
		return NewGlamour(), nil
	case RendererPlain:
		return Plain{}, nil
	}
	return nil, fmt.Errorf("unknown renderer %q (want %s)", name, strings.Join(Renderers, ", "))
}

// Plain prints text as is: escaped, wrapped, line breaks kept.
type Plain struct{}

func (Plain) Render(text string, width int, _ session.Theme) string {
	text = Escape(text)
	if width > 0 {
		text = wordwrap.String(text, width)
	}
	return text
}

// TermMarkdown renders with go-term-markdown. Rendering is slow for long
// answers and the viewport redraws on every tick, so results are cached.
type TermMarkdown struct {
	padding int

	mu    sync.Mutex
	cache map[string]string
}

func NewTermMarkdown() *TermMarkdown {
	return &TermMarkdown{cache: make(map[string]string)}
}

func (m *TermMarkdown) Render(text string, width int, _ session.Theme) string {
	key := fmt.Sprintf("%s__%d__%d", text, width, m.padding)

	m.mu.Lock()
	defer m.mu.Unlock()
	if out, ok := m.cache[key]; ok {
		return out
	}
	out := strings.TrimRight(string(markdown.Render(Escape(text), width, m.padding)), " \t\r\n")
	m.cache[key] = out
	return out
}

// Glamour renders with the dark or light standard glamour style. One
// renderer is kept per theme and width.
type Glamour struct {
	mu        sync.Mutex
	renderers map[string]*glamour.TermRenderer
}

func NewGlamour() *Glamour {
	return &Glamour{renderers: make(map[string]*glamour.TermRenderer)}
}

func (g *Glamour) Render(text string, width int, theme session.Theme) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := fmt.Sprintf("%s/%d", theme, width)
	r, ok := g.renderers[key]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(string(theme)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return Plain{}.Render(text, width, theme)
		}
		g.renderers[key] = r
	}

	out, err := r.Render(Escape(text))
	if err != nil {
		return Plain{}.Render(text, width, theme)
	}
	return strings.Trim(out, "\n")
}
