package main

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kir-gadjello/unichat/session"
)

type pickerKind int

const (
	pickProvider pickerKind = iota
	pickModel
)

type optionItem struct {
	opt session.Choice
}

func (i optionItem) Title() string { return i.opt.Label }
func (i optionItem) Description() string {
	if i.opt.Disabled {
		return "unavailable"
	}
	return i.opt.Value
}
func (i optionItem) FilterValue() string { return i.opt.Label + " " + i.opt.Value }

// picker is the provider or model selector overlay.
type picker struct {
	kind   pickerKind
	list   list.Model
	active bool
	chosen string
}

func newPicker(kind pickerKind, options []session.Choice, selected string, width, height int) picker {
	items := make([]list.Item, len(options))
	cursor := 0
	for i, opt := range options {
		items[i] = optionItem{opt: opt}
		if opt.Value == selected {
			cursor = i
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select provider"
	if kind == pickModel {
		l.Title = "Select model"
	}
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)
	l.SetShowHelp(false)
	l.Select(cursor)

	p := picker{kind: kind, list: l, active: true}
	p.setSize(width, height)
	return p
}

func (p *picker) setSize(width, height int) {
	h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
	p.list.SetSize(width-h, height-v)
}

func (p picker) Update(msg tea.Msg) (picker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && p.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "ctrl+c":
			p.active = false
			return p, nil
		case "enter":
			if i, ok := p.list.SelectedItem().(optionItem); ok && !i.opt.Disabled {
				p.chosen = i.opt.Value
				p.active = false
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p picker) View() string {
	return lipgloss.NewStyle().Margin(1, 2).Render(p.list.View())
}
