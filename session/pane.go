package session

import (
	"image"

	"github.com/google/uuid"
)

type EntryKind int

const (
	EntryWelcome EntryKind = iota
	EntryUser
	EntryAssistant
	EntryTyping
	EntryError
	EntryImage
)

func (k EntryKind) String() string {
	switch k {
	case EntryWelcome:
		return "welcome"
	case EntryUser:
		return "user"
	case EntryAssistant:
		return "assistant"
	case EntryTyping:
		return "typing"
	case EntryError:
		return "error"
	case EntryImage:
		return "image"
	}
	return "unknown"
}

// Entry is one rendered block of an output area.
type Entry struct {
	ID    string
	Kind  EntryKind
	Title string
	Text  string
	Image *ImageResult
}

// ImageLoadFailed replaces a generated image that could not be fetched.
const ImageLoadFailed = "Image load failed"

type ImageResult struct {
	URL     string
	Prompt  string
	Model   string
	Note    string
	Picture image.Image
	LoadErr error
}

// Caption returns the two caption lines shown under a generated image.
func (r *ImageResult) Caption() (string, string) {
	model := r.Model
	if model == "" {
		model = "unknown"
	}
	meta := "Model: " + model
	if r.Note != "" {
		meta += " · " + r.Note
	}
	return "Prompt: " + r.Prompt, meta
}

func WelcomeEntry() Entry {
	return Entry{
		Kind:  EntryWelcome,
		Title: "Unified AI Chatbot",
		Text:  "Pick a provider and start a conversation.",
	}
}

func ClearedEntry() Entry {
	return Entry{Kind: EntryWelcome, Title: "Chat cleared!", Text: "Start a new conversation."}
}

// Pane is an ordered list of entries backing one output area.
type Pane struct {
	entries []Entry
}

func NewPane(entries ...Entry) *Pane {
	p := &Pane{}
	p.Reset(entries...)
	return p
}

// Append adds e at the end and returns its id.
func (p *Pane) Append(e Entry) string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	p.entries = append(p.entries, e)
	return e.ID
}

func (p *Pane) Remove(id string) bool {
	for i, e := range p.entries {
		if e.ID == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Pane) RemoveKind(kind EntryKind) {
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.Kind != kind {
			kept = append(kept, e)
		}
	}
	p.entries = kept
}

// Reset replaces the whole content.
func (p *Pane) Reset(entries ...Entry) {
	p.entries = nil
	for _, e := range entries {
		p.Append(e)
	}
}

// Entries returns a copy of the current content.
func (p *Pane) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p *Pane) Len() int { return len(p.entries) }

func (p *Pane) Count(kind EntryKind) int {
	n := 0
	for _, e := range p.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
