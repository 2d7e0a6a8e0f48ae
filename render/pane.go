package render

import (
	"strings"

	"github.com/kir-gadjello/unichat/session"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

// PaneOptions controls how an output area is drawn.
type PaneOptions struct {
	Width     int
	Styles    Styles
	Formatter Formatter
	Profile   termenv.Profile

	// TypingFrame is drawn for a typing indicator, usually a spinner view.
	TypingFrame string

	// ImageRows caps the height of an image preview.
	ImageRows int
}

// Pane draws entries top to bottom.
func Pane(entries []session.Entry, o PaneOptions) string {
	width := o.Width
	if width <= 0 {
		width = 80
	}
	s := o.Styles

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case session.EntryWelcome:
			blocks = append(blocks, "🤖 "+s.WelcomeTitle.Render(Escape(e.Title))+"\n"+
				s.Dim.Render(Escape(e.Text)))
		case session.EntryUser:
			blocks = append(blocks, s.UserLabel.Render("👤 You")+"\n"+
				s.UserText.Render(wordwrap.String(Escape(e.Text), width)))
		case session.EntryAssistant:
			blocks = append(blocks, s.AssistantLabel.Render("🤖 Assistant")+"\n"+
				o.Formatter.Format(e.Text, width, s.Theme))
		case session.EntryTyping:
			frame := o.TypingFrame
			if frame == "" {
				frame = "..."
			}
			blocks = append(blocks, "🤖 "+frame)
		case session.EntryError:
			blocks = append(blocks, ErrorBlock(e.Text, width, s))
		case session.EntryImage:
			blocks = append(blocks, imageBlock(e.Image, width, o))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// ErrorBlock draws msg inside the error box.
func ErrorBlock(msg string, width int, s Styles) string {
	inner := width - 6
	if inner < 10 {
		inner = 10
	}
	return "⚠️ " + s.Error.Render(wordwrap.String(Escape(msg), inner))
}

func imageBlock(r *session.ImageResult, width int, o PaneOptions) string {
	if r == nil {
		return ""
	}
	s := o.Styles

	var preview string
	if r.Picture != nil && r.LoadErr == nil {
		rows := o.ImageRows
		if rows <= 0 {
			rows = 24
		}
		preview = HalfBlocks(r.Picture, width, rows, o.Profile)
	} else {
		preview = s.Dim.Render("🖼  " + session.ImageLoadFailed)
	}

	prompt, meta := r.Caption()
	return preview + "\n" +
		s.Caption.Render(wordwrap.String(Escape(prompt), width)) + "\n" +
		s.Dim.Render(Escape(meta)) + "\n" +
		s.Dim.Render(Escape(r.URL))
}
