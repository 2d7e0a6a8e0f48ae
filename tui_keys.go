package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/kir-gadjello/unichat/session"
)

type keyMap struct {
	ChatMode  key.Binding
	CodeMode  key.Binding
	ImageMode key.Binding

	Provider key.Binding
	Model    key.Binding

	Send    key.Binding
	Submit  key.Binding
	Newline key.Binding

	CodeTask     key.Binding
	CodeLanguage key.Binding
	ImageSize    key.Binding
	TempUp       key.Binding
	TempDown     key.Binding
	SystemPrompt key.Binding

	Settings key.Binding
	Clear    key.Binding
	History  key.Binding
	Theme    key.Binding
	CopyPane key.Binding
	CopyLast key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding
	MoreHelp   key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ChatMode:  key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "chat")),
		CodeMode:  key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "code")),
		ImageMode: key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "image")),

		Provider: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "provider")),
		Model:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "model")),

		Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Submit:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run")),
		Newline: key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "newline")),

		CodeTask:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "task")),
		CodeLanguage: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "language")),
		ImageSize:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "size")),
		TempUp:       key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "temp +")),
		TempDown:     key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "temp -")),
		SystemPrompt: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "system prompt")),

		Settings: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "settings")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		History:  key.NewBinding(key.WithKeys("alt+h"), key.WithHelp("alt+h", "reload history")),
		Theme:    key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "theme")),
		CopyPane: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "copy pane")),
		CopyLast: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "copy result")),

		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		MoreHelp:   key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// forMode enables the bindings that apply in mode. In chat mode enter sends;
// elsewhere it inserts a newline and ctrl+r submits.
func (k *keyMap) forMode(m session.Mode) {
	chat, code, img := m == session.ModeChat, m == session.ModeCode, m == session.ModeImage

	k.Send.SetEnabled(chat)
	k.Submit.SetEnabled(!chat)
	k.TempUp.SetEnabled(chat)
	k.TempDown.SetEnabled(chat)
	k.SystemPrompt.SetEnabled(chat)
	k.Clear.SetEnabled(chat)
	k.History.SetEnabled(chat)
	k.CodeTask.SetEnabled(code)
	k.CodeLanguage.SetEnabled(code)
	k.ImageSize.SetEnabled(img)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Submit, k.Provider, k.Model, k.CodeTask, k.CodeLanguage, k.ImageSize, k.Settings, k.MoreHelp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ChatMode, k.CodeMode, k.ImageMode, k.Provider, k.Model},
		{k.Send, k.Submit, k.Newline, k.ScrollUp, k.ScrollDown},
		{k.CodeTask, k.CodeLanguage, k.ImageSize, k.TempUp, k.TempDown, k.SystemPrompt},
		{k.Settings, k.Clear, k.History, k.Theme, k.CopyPane, k.CopyLast, k.Quit},
	}
}
