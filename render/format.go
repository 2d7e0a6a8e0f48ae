package render

import (
	"strings"

	"github.com/kir-gadjello/unichat/session"
)

// Formatter renders response text: prose through Markdown, fenced code
// through Highlighter. With no Highlighter the fences are left to Markdown.
type Formatter struct {
	Markdown    Markdown
	Highlighter Highlighter
}

func (f Formatter) Format(text string, width int, theme session.Theme) string {
	md := f.Markdown
	if md == nil {
		md = Plain{}
	}
	if f.Highlighter == nil {
		return md.Render(text, width, theme)
	}

	var parts []string
	for _, seg := range splitFences(text) {
		if seg.code {
			parts = append(parts, f.Highlighter.Highlight(seg.text, seg.lang, theme))
			continue
		}
		if strings.TrimSpace(seg.text) == "" {
			continue
		}
		parts = append(parts, md.Render(seg.text, width, theme))
	}
	return strings.Join(parts, "\n\n")
}

type segment struct {
	code bool
	lang string
	text string
}

// splitFences cuts text at ``` fences. An unterminated fence runs to the end.
func splitFences(text string) []segment {
	var (
		segs []segment
		buf  []string
		cur  segment
	)
	flush := func() {
		cur.text = strings.Join(buf, "\n")
		if cur.code || cur.text != "" {
			segs = append(segs, cur)
		}
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			buf = append(buf, line)
			continue
		}
		flush()
		if cur.code {
			cur = segment{}
		} else {
			cur = segment{code: true, lang: strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))}
		}
	}
	flush()
	return segs
}
