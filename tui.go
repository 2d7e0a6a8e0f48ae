package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kir-gadjello/unichat/render"
	"github.com/kir-gadjello/unichat/session"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	chatInputHeight  = 3
	blockInputHeight = 6
)

var placeholders = map[session.Mode]string{
	session.ModeChat:  "Type a message...",
	session.ModeCode:  "Paste code or describe what to generate...",
	session.ModeImage: "Describe the image to generate...",
}

// outcomeMsg carries a finished request back to the update loop.
type outcomeMsg struct {
	outcome session.Outcome
}

type toastExpiredMsg struct {
	seq int
}

// jobRunner turns a controller job into a command.
type jobRunner func(job session.Job) tea.Cmd

func asyncRunner(ctx context.Context) jobRunner {
	return func(job session.Job) tea.Cmd {
		if job == nil {
			return nil
		}
		return func() tea.Msg {
			return outcomeMsg{outcome: job(ctx)}
		}
	}
}

type tuiModel struct {
	ctrl      *session.Controller
	formatter render.Formatter
	styles    render.Styles
	profile   termenv.Profile
	log       *zap.Logger
	keys      keyMap
	runJob    jobRunner
	copy      func(string) error

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	picker picker
	form   configForm
	editor promptEditor

	drafts    map[session.Mode]string
	toastSeq  int
	width     int
	height    int
	followEnd bool
}

func newTUIModel(a *app) tuiModel {
	ta := textarea.New()
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 100000
	ta.MaxHeight = 32
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true
	vp.KeyMap = viewport.KeyMap{}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := tuiModel{
		ctrl:      a.ctrl,
		formatter: a.formatter,
		styles:    render.NewStyles(a.ctrl.State().Theme),
		profile:   termenv.ColorProfile(),
		log:       a.log.Named("tui"),
		keys:      defaultKeyMap(),
		runJob:    asyncRunner(context.Background()),
		copy:      clipboard.WriteAll,
		textarea:  ta,
		viewport:  vp,
		spinner:   sp,
		help:      help.New(),
		drafts:    make(map[session.Mode]string),
		width:     80,
		height:    24,
		followEnd: true,
	}
	m.spinner.Style = m.styles.Spinner
	m.applyMode()
	m.layout()
	m.refresh()
	return m
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isInteractive(os.Stdout.Fd()) {
		return fmt.Errorf("the interactive interface needs a terminal; use 'unichat chat', 'code' or 'image' for scripted use")
	}

	a, err := appFromCommand(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	m := newTUIModel(a)
	m.runJob = asyncRunner(cmd.Context())

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.runJob(m.ctrl.LoadProviders()))
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	timer := m.toastTimer()
	return m, tea.Batch(cmd, timer)
}

func (m tuiModel) update(msg tea.Msg) (tuiModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.picker.active {
			m.picker.setSize(m.width, m.height)
		}
		m.layout()
		m.refresh()
		return m, nil

	case outcomeMsg:
		next := m.ctrl.Settle(msg.outcome)
		m.followEnd = true
		m.refresh()
		cmd := m.dispatch(next)
		return m, cmd

	case toastExpiredMsg:
		m.ctrl.ExpireToast(msg.seq)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	switch {
	case m.picker.active:
		return m.updatePicker(msg)
	case m.ctrl.ConfigOpen():
		return m.updateForm(msg)
	case m.editor.active:
		return m.updateEditor(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	var taCmd, vpCmd tea.Cmd
	if _, ok := msg.(tea.MouseMsg); !ok {
		m.textarea, taCmd = m.textarea.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.followEnd = m.viewport.AtBottom()
	return m, tea.Batch(taCmd, vpCmd)
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tuiModel, tea.Cmd, bool) {
	c := m.ctrl
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.ChatMode):
		return m.switchMode(session.ModeChat), nil, true
	case key.Matches(msg, m.keys.CodeMode):
		return m.switchMode(session.ModeCode), nil, true
	case key.Matches(msg, m.keys.ImageMode):
		return m.switchMode(session.ModeImage), nil, true

	case key.Matches(msg, m.keys.Provider):
		m.picker = newPicker(pickProvider, c.ProviderOptions(), c.State().ProviderID, m.width, m.height)
		return m, nil, true
	case key.Matches(msg, m.keys.Model):
		m.picker = newPicker(pickModel, c.ModelOptions(), c.State().ModelID, m.width, m.height)
		return m, nil, true

	case key.Matches(msg, m.keys.Newline):
		m.textarea.InsertString("\n")
		return m, nil, true
	case key.Matches(msg, m.keys.Send), key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.CodeTask):
		c.CycleCodeTask(1)
	case key.Matches(msg, m.keys.CodeLanguage):
		c.CycleCodeLanguage(1)
	case key.Matches(msg, m.keys.ImageSize):
		c.CycleImageSize(1)
	case key.Matches(msg, m.keys.TempUp):
		c.AdjustTemperature(0.1)
	case key.Matches(msg, m.keys.TempDown):
		c.AdjustTemperature(-0.1)

	case key.Matches(msg, m.keys.SystemPrompt):
		m.editor = newPromptEditor(c.State().SystemPrompt, m.width)
		return m, textinput.Blink, true
	case key.Matches(msg, m.keys.Settings):
		c.OpenConfig()
		m.form = newConfigForm()
		return m, textinput.Blink, true

	case key.Matches(msg, m.keys.Clear):
		cmd := m.dispatch(c.ClearChat())
		return m, cmd, true
	case key.Matches(msg, m.keys.History):
		cmd := m.dispatch(c.LoadHistory())
		return m, cmd, true

	case key.Matches(msg, m.keys.Theme):
		if err := c.ToggleTheme(); err != nil {
			m.log.Warn("theme not saved", zap.Error(err))
		}
		m.styles = render.NewStyles(c.State().Theme)
		m.spinner.Style = m.styles.Spinner
		m.refresh()

	case key.Matches(msg, m.keys.CopyPane):
		m.copyText(paneText(c.Entries(c.State().Mode)), "Conversation copied")
	case key.Matches(msg, m.keys.CopyLast):
		m.copyText(c.LastResult(), "Result copied")

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.ViewUp()
		m.followEnd = false
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.ViewDown()
		m.followEnd = m.viewport.AtBottom()
	case key.Matches(msg, m.keys.MoreHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		m.refresh()

	default:
		return m, nil, false
	}
	return m, nil, true
}

// submit hands the input of the active mode to its dispatcher. Only the chat
// input is cleared once a request goes out.
func (m tuiModel) submit() (tuiModel, tea.Cmd, bool) {
	c := m.ctrl
	input := m.textarea.Value()

	var job session.Job
	switch c.State().Mode {
	case session.ModeChat:
		job = c.SendChat(input)
		if job != nil {
			m.textarea.Reset()
		}
	case session.ModeCode:
		job = c.RunCode(input)
	case session.ModeImage:
		job = c.GenerateImage(input)
	}

	m.followEnd = true
	m.refresh()
	cmd := m.dispatch(job)
	return m, cmd, true
}

// dispatch starts job and the loading spinner.
func (m *tuiModel) dispatch(job session.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	cmd := m.runJob(job)
	m.refresh()
	if m.ctrl.State().Loading {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m tuiModel) switchMode(mode session.Mode) tuiModel {
	cur := m.ctrl.State().Mode
	if mode == cur {
		return m
	}
	m.drafts[cur] = m.textarea.Value()
	m.ctrl.SetMode(mode)
	m.textarea.SetValue(m.drafts[mode])
	m.applyMode()
	m.layout()
	m.followEnd = true
	m.refresh()
	return m
}

// applyMode updates key bindings and the input for the current mode.
func (m *tuiModel) applyMode() {
	mode := m.ctrl.State().Mode
	m.keys.forMode(mode)
	m.textarea.KeyMap.InsertNewline.SetEnabled(mode != session.ModeChat)
	m.textarea.Placeholder = placeholders[mode]
	if mode == session.ModeChat {
		m.textarea.SetHeight(chatInputHeight)
	} else {
		m.textarea.SetHeight(blockInputHeight)
	}
}

func (m tuiModel) updatePicker(msg tea.Msg) (tuiModel, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if m.picker.active || m.picker.chosen == "" {
		return m, cmd
	}

	var err error
	switch m.picker.kind {
	case pickProvider:
		err = m.ctrl.SelectProvider(m.picker.chosen)
	case pickModel:
		err = m.ctrl.SelectModel(m.picker.chosen)
	}
	if err != nil {
		m.log.Warn("selection rejected", zap.String("value", m.picker.chosen), zap.Error(err))
	}
	m.picker.chosen = ""
	return m, cmd
}

func (m tuiModel) updateForm(msg tea.Msg) (tuiModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.ctrl.CloseConfig()
			return m, nil
		case "enter":
			cmd := m.dispatch(m.ctrl.SaveConfig(m.form.credentials()))
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m tuiModel) updateEditor(msg tea.Msg) (tuiModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.editor.active = false
			return m, nil
		case "enter":
			m.ctrl.SetSystemPrompt(m.editor.input.Value())
			m.editor.active = false
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *tuiModel) copyText(text, done string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := m.copy(text); err != nil {
		m.log.Warn("clipboard", zap.Error(err))
		m.ctrl.Notify("Copy failed", session.ToastError)
		return
	}
	m.ctrl.Notify(done, session.ToastSuccess)
}

// toastTimer schedules expiry of a toast the first time it is seen.
func (m *tuiModel) toastTimer() tea.Cmd {
	t, ok := m.ctrl.Toast()
	if !ok || t.Seq == m.toastSeq {
		return nil
	}
	m.toastSeq = t.Seq
	return tea.Tick(session.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: t.Seq}
	})
}

func (m *tuiModel) layout() {
	m.textarea.SetWidth(m.width - 2)
	m.help.Width = m.width
	m.viewport.Width = m.width

	// top bar, input border, status line
	chrome := 3 + m.textarea.Height() + lipgloss.Height(m.help.View(m.keys))
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.viewport.Height = h
}

// refresh redraws the active pane into the viewport.
func (m *tuiModel) refresh() {
	c := m.ctrl
	content := render.Pane(c.Entries(c.State().Mode), render.PaneOptions{
		Width:       m.width - 2,
		Styles:      m.styles,
		Formatter:   m.formatter,
		Profile:     m.profile,
		TypingFrame: m.spinner.View() + " thinking...",
		ImageRows:   m.viewport.Height - 4,
	})
	m.viewport.SetContent(content)
	if m.followEnd {
		m.viewport.GotoBottom()
	}
}

func (m tuiModel) topBar() string {
	c := m.ctrl
	st := c.State()
	tb := c.Topbar()

	parts := []string{tb.Provider}
	if tb.Provider == "" {
		parts[0] = session.NoProvidersLabel
	}
	if st.ModelID != "" {
		parts = append(parts, st.ModelID)
	}
	switch st.Mode {
	case session.ModeChat:
		parts = append(parts, fmt.Sprintf("🌡 %.1f", st.Temperature))
		if st.SystemPrompt != "" {
			parts = append(parts, "📝")
		}
	case session.ModeCode:
		parts = append(parts, st.CodeTask, st.CodeLanguage)
	case session.ModeImage:
		parts = append(parts, st.ImageSize)
	}
	parts = append(parts, st.Theme.Icon())

	bar := m.styles.TopBarMode.Render(tb.Mode) + m.styles.TopBar.Render(strings.Join(parts, " · "))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
}

func (m tuiModel) statusLine() string {
	if t, ok := m.ctrl.Toast(); ok {
		return m.styles.Toast(t)
	}
	if m.ctrl.State().Loading {
		return m.spinner.View() + m.styles.Dim.Render(" waiting for the backend...")
	}
	return m.styles.Dim.Render(m.ctrl.SendIcon() + " ready")
}

func (m tuiModel) View() string {
	switch {
	case m.picker.active:
		return m.picker.View()
	case m.ctrl.ConfigOpen():
		return m.overlay(m.form.View(m.styles, m.width))
	case m.editor.active:
		return m.overlay(m.editor.View(m.styles, m.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.topBar(),
		m.viewport.View(),
		m.styles.Input.Render(m.textarea.View()),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m tuiModel) overlay(box string) string {
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, box)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLine())
}

// paneText is the plain text of a pane for the clipboard.
func paneText(entries []session.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		var line string
		switch e.Kind {
		case session.EntryUser:
			line = "You: " + e.Text
		case session.EntryAssistant:
			line = "Assistant: " + e.Text
		case session.EntryError:
			line = "Error: " + e.Text
		case session.EntryImage:
			prompt, meta := e.Image.Caption()
			line = prompt + "\n" + meta + "\n" + e.Image.URL
		default:
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line)
	}
	return b.String()
}
