package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kir-gadjello/unichat/api"
	"github.com/kir-gadjello/unichat/render"
)

// configForm collects the five provider keys of the settings modal.
type configForm struct {
	inputs []textinput.Model
	focus  int
}

func newConfigForm() configForm {
	f := configForm{inputs: make([]textinput.Model, len(credentialFields))}
	for i, field := range credentialFields {
		ti := textinput.New()
		ti.Prompt = field.label + ": "
		ti.Placeholder = "unchanged"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
		ti.CharLimit = 512
		f.inputs[i] = ti
	}
	f.inputs[0].Focus()
	return f
}

func (f configForm) credentials() api.Credentials {
	var creds api.Credentials
	for i, field := range credentialFields {
		field.set(&creds, f.inputs[i].Value())
	}
	return creds
}

func (f *configForm) move(step int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + step + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// Update handles navigation; enter and esc are left to the caller.
func (f configForm) Update(msg tea.Msg) (configForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.move(1)
			return f, textinput.Blink
		case "shift+tab", "up":
			f.move(-1)
			return f, textinput.Blink
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f configForm) View(s render.Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.WelcomeTitle.Render("⚙️  Settings"))
	b.WriteString("\n\n")
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.Dim.Render("tab: next field • enter: save • esc: close"))
	return s.Modal.Width(modalWidth(width)).Render(b.String())
}

// promptEditor edits the chat system prompt.
type promptEditor struct {
	input  textinput.Model
	active bool
}

func newPromptEditor(current string, width int) promptEditor {
	ti := textinput.New()
	ti.Prompt = "System prompt: "
	ti.Placeholder = "You are a helpful assistant."
	ti.CharLimit = 4000
	ti.Width = modalWidth(width) - 24
	ti.SetValue(current)
	ti.CursorEnd()
	ti.Focus()
	return promptEditor{input: ti, active: true}
}

func (e promptEditor) Update(msg tea.Msg) (promptEditor, tea.Cmd) {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd
}

func (e promptEditor) View(s render.Styles, width int) string {
	return s.Modal.Width(modalWidth(width)).Render(
		e.input.View() + "\n\n" + s.Dim.Render("enter: apply • esc: cancel"))
}

func modalWidth(width int) int {
	w := width - 8
	if w > 80 {
		w = 80
	}
	if w < 30 {
		w = 30
	}
	return w
}
