// Package session holds the client-side state of a unichat session and the
// operations that mutate it. Nothing in here touches the terminal: the TUI and
// the one-shot commands read state through accessors and run the jobs the
// dispatchers hand back.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/kir-gadjello/unichat/api"
	"go.uber.org/zap"
)

// Backend is the subset of the HTTP client the controller needs.
type Backend interface {
	Providers(ctx context.Context) ([]api.Provider, error)
	Chat(ctx context.Context, req api.ChatRequest) (*api.Reply, error)
	Code(ctx context.Context, req api.CodeRequest) (*api.Reply, error)
	Image(ctx context.Context, req api.ImageRequest) (*api.ImageReply, error)
	FetchImage(ctx context.Context, url string) (image.Image, error)
	Clear(ctx context.Context) (*api.Ack, error)
	Configure(ctx context.Context, creds api.Credentials) (*api.Ack, error)
	History(ctx context.Context) ([]api.HistoryMessage, error)
}

// Prefs persists small string preferences between runs.
type Prefs interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

var (
	ErrUnknownProvider = errors.New("provider not available in this mode")
	ErrUnknownModel    = errors.New("model not offered by the selected provider")
	ErrInvalidChoice   = errors.New("invalid choice")
)

// Defaults seeds the auxiliary inputs. Zero fields keep the built-in values.
type Defaults struct {
	Mode         Mode
	SystemPrompt string
	Temperature  *float64
	CodeTask     string
	CodeLanguage string
	ImageSize    string
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithDefaults(d Defaults) Option {
	return func(c *Controller) { c.defaults = d }
}

type Controller struct {
	backend  Backend
	prefs    Prefs
	log      *zap.Logger
	defaults Defaults

	state     State
	providers []api.Provider

	chat  *Pane
	code  *Pane
	image *Pane

	toast      *Toast
	toastSeq   int
	configOpen bool
	lastResult string
}

func New(backend Backend, prefs Prefs, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		prefs:   prefs,
		log:     zap.NewNop(),
		state: State{
			Mode:         ModeChat,
			Theme:        ThemeDark,
			Temperature:  DefaultTemperature,
			CodeTask:     DefaultCodeTask,
			CodeLanguage: DefaultCodeLanguage,
			ImageSize:    DefaultImageSize,
		},
		chat:  NewPane(WelcomeEntry()),
		code:  NewPane(),
		image: NewPane(),
	}
	for _, opt := range opts {
		opt(c)
	}

	d := c.defaults
	if d.Mode != "" {
		if m, err := ParseMode(string(d.Mode)); err == nil {
			c.state.Mode = m
		}
	}
	c.state.SystemPrompt = strings.TrimSpace(d.SystemPrompt)
	if d.Temperature != nil {
		c.state.Temperature = ClampTemperature(*d.Temperature)
	}
	if contains(CodeTasks, d.CodeTask) {
		c.state.CodeTask = d.CodeTask
	}
	if contains(CodeLanguages, d.CodeLanguage) {
		c.state.CodeLanguage = d.CodeLanguage
	}
	if contains(ImageSizes, d.ImageSize) {
		c.state.ImageSize = d.ImageSize
	}
	return c
}

// InitTheme applies the persisted theme. A missing or unreadable preference
// leaves the dark default.
func (c *Controller) InitTheme() {
	if c.prefs == nil {
		return
	}
	v, ok, err := c.prefs.Get(ThemePrefKey)
	if err != nil {
		c.log.Warn("read theme preference", zap.Error(err))
		return
	}
	if ok {
		c.state.Theme = ParseTheme(v)
	}
}

// ToggleTheme flips the theme and persists the new value.
func (c *Controller) ToggleTheme() error {
	c.state.Theme = c.state.Theme.Toggle()
	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.Set(ThemePrefKey, string(c.state.Theme)); err != nil {
		c.log.Warn("persist theme", zap.Error(err))
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}

// ResetTheme forgets the stored theme and returns to the dark default.
func (c *Controller) ResetTheme() error {
	c.state.Theme = ThemeDark
	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.Delete(ThemePrefKey); err != nil {
		c.log.Warn("reset theme", zap.Error(err))
		return fmt.Errorf("reset theme: %w", err)
	}
	return nil
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Providers() []api.Provider {
	out := make([]api.Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// SetMode switches the active panel and re-renders the provider selector.
func (c *Controller) SetMode(m Mode) {
	c.state.Mode = m
	c.RenderProviders()
}

// RenderProviders selects the default provider among the ones relevant to
// the current mode and populates its models.
func (c *Controller) RenderProviders() {
	def, ok := DefaultProvider(Relevant(c.providers, c.state.Mode))
	if !ok {
		c.state.ProviderID = ""
		c.state.ModelID = ""
		return
	}
	c.state.ProviderID = def.ID
	c.UpdateModels(def.ID)
}

// UpdateModels auto-selects the first model of providerID. Without models
// the model id is left empty.
func (c *Controller) UpdateModels(providerID string) {
	p := findProvider(c.providers, providerID)
	if p == nil || len(p.Models) == 0 {
		c.state.ModelID = ""
		return
	}
	c.state.ModelID = p.Models[0].ID
}

func (c *Controller) ProviderOptions() []Choice {
	return ProviderOptions(c.providers, c.state.Mode)
}

func (c *Controller) ModelOptions() []Choice {
	return ModelOptions(c.SelectedProvider())
}

// SelectedProvider returns the selected provider, or nil.
func (c *Controller) SelectedProvider() *api.Provider {
	if c.state.ProviderID == "" {
		return nil
	}
	return findProvider(c.providers, c.state.ProviderID)
}

func (c *Controller) SelectProvider(id string) error {
	if findProvider(Relevant(c.providers, c.state.Mode), id) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	c.state.ProviderID = id
	c.UpdateModels(id)
	return nil
}

func (c *Controller) SelectModel(id string) error {
	for _, opt := range c.ModelOptions() {
		if opt.Value == id {
			c.state.ModelID = id
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownModel, id)
}

func (c *Controller) SetSystemPrompt(s string) { c.state.SystemPrompt = strings.TrimSpace(s) }

func (c *Controller) SetTemperature(t float64) { c.state.Temperature = ClampTemperature(t) }

func (c *Controller) AdjustTemperature(delta float64) {
	c.SetTemperature(c.state.Temperature + delta)
}

func (c *Controller) SetCodeTask(task string) error {
	return setChoice(&c.state.CodeTask, CodeTasks, task)
}

func (c *Controller) CycleCodeTask(step int) {
	c.state.CodeTask = cycle(CodeTasks, c.state.CodeTask, step)
}

func (c *Controller) SetCodeLanguage(lang string) error {
	return setChoice(&c.state.CodeLanguage, CodeLanguages, lang)
}

func (c *Controller) CycleCodeLanguage(step int) {
	c.state.CodeLanguage = cycle(CodeLanguages, c.state.CodeLanguage, step)
}

func (c *Controller) SetImageSize(size string) error {
	return setChoice(&c.state.ImageSize, ImageSizes, size)
}

func (c *Controller) CycleImageSize(step int) {
	c.state.ImageSize = cycle(ImageSizes, c.state.ImageSize, step)
}

func setChoice(dst *string, list []string, v string) error {
	if err := CheckChoice(list, v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// CheckChoice reports ErrInvalidChoice unless v is one of list.
func CheckChoice(list []string, v string) error {
	if !contains(list, v) {
		return fmt.Errorf("%w %q (want one of %s)", ErrInvalidChoice, v, strings.Join(list, ", "))
	}
	return nil
}

func (c *Controller) OpenConfig() { c.configOpen = true }
func (c *Controller) CloseConfig() { c.configOpen = false }
func (c *Controller) ConfigOpen() bool { return c.configOpen }

// Topbar is the header line: the mode label and the selected provider.
type Topbar struct {
	Mode     string
	Provider string
}

func (c *Controller) Topbar() Topbar {
	tb := Topbar{Mode: c.state.Mode.Label()}
	if p := c.SelectedProvider(); p != nil {
		tb.Provider = p.Name
		if !p.Configured {
			tb.Provider += unconfiguredHint
		}
	}
	return tb
}

// SendIcon is the label of the chat send affordance.
func (c *Controller) SendIcon() string {
	if c.state.Loading {
		return "⏳"
	}
	return "➤"
}

// Entries returns the content of the output area for mode.
func (c *Controller) Entries(m Mode) []Entry {
	return c.pane(m).Entries()
}

func (c *Controller) pane(m Mode) *Pane {
	switch m {
	case ModeCode:
		return c.code
	case ModeImage:
		return c.image
	}
	return c.chat
}

// LastResult is the text of the latest successful chat or code response.
func (c *Controller) LastResult() string { return c.lastResult }

func (c *Controller) setLoading(v bool) { c.state.Loading = v }
