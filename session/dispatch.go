package session

import (
	"context"
	"image"
	"strings"

	"github.com/kir-gadjello/unichat/api"
	"go.uber.org/zap"
)

// Job is the network half of an operation. It may run on any goroutine and
// must not touch the controller; its Outcome is applied with Settle on the
// goroutine that owns the controller.
type Job func(ctx context.Context) Outcome

// Outcome is the result of a Job.
type Outcome interface {
	apply(c *Controller) Job
}

// Settle applies o and returns the follow-up job, if any.
func (c *Controller) Settle(o Outcome) Job {
	if o == nil {
		return nil
	}
	return o.apply(c)
}

// Do runs job and every follow-up job synchronously.
func (c *Controller) Do(ctx context.Context, job Job) {
	for job != nil {
		job = c.Settle(job(ctx))
	}
}

func replyError(msg string) string {
	if msg == "" {
		return msgUnknownError
	}
	return msg
}

// LoadProviders fetches the provider registry.
func (c *Controller) LoadProviders() Job {
	backend := c.backend
	return func(ctx context.Context) Outcome {
		providers, err := backend.Providers(ctx)
		return providersOutcome{providers: providers, err: err}
	}
}

type providersOutcome struct {
	providers []api.Provider
	err       error
}

func (o providersOutcome) apply(c *Controller) Job {
	if o.err != nil {
		c.log.Warn("load providers", zap.Error(o.err))
		c.notify(msgProvidersFailed, ToastError)
		return nil
	}
	c.providers = o.providers
	c.log.Debug("providers loaded", zap.Int("count", len(o.providers)))
	c.RenderProviders()
	return nil
}

// SendChat posts input as the next chat message. It returns nil when nothing
// was sent: blank input, a request in flight, or no provider selected.
func (c *Controller) SendChat(input string) Job {
	msg := strings.TrimSpace(input)
	if msg == "" || c.state.Loading {
		return nil
	}
	if c.state.ProviderID == "" {
		c.notify(msgSelectProvider, ToastError)
		return nil
	}

	c.chat.RemoveKind(EntryWelcome)
	c.chat.Append(Entry{Kind: EntryUser, Text: msg})
	typing := c.chat.Append(Entry{Kind: EntryTyping})
	c.setLoading(true)

	req := api.ChatRequest{
		Message:      msg,
		Provider:     c.state.ProviderID,
		Model:        c.state.ModelID,
		SystemPrompt: c.state.SystemPrompt,
		Temperature:  c.state.Temperature,
		UseHistory:   true,
	}
	c.log.Debug("send chat",
		zap.String("provider", req.Provider),
		zap.String("model", req.Model),
		zap.Float64("temperature", req.Temperature))

	backend := c.backend
	return func(ctx context.Context) Outcome {
		reply, err := backend.Chat(ctx, req)
		return chatOutcome{typing: typing, reply: reply, err: err}
	}
}

type chatOutcome struct {
	typing string
	reply  *api.Reply
	err    error
}

func (o chatOutcome) apply(c *Controller) Job {
	defer c.setLoading(false)
	c.chat.Remove(o.typing)

	switch {
	case o.err != nil:
		c.log.Warn("chat request failed", zap.Error(o.err))
		c.chat.Append(Entry{Kind: EntryError, Text: networkErrorPrefix + o.err.Error()})
	case o.reply.Success:
		c.chat.Append(Entry{Kind: EntryAssistant, Text: o.reply.Response})
		c.lastResult = o.reply.Response
	default:
		c.log.Info("chat rejected", zap.String("error", o.reply.Error))
		c.chat.Append(Entry{Kind: EntryError, Text: replyError(o.reply.Error)})
	}
	return nil
}

// RunCode submits code for the selected code task. The code output area is
// replaced, not appended to.
func (c *Controller) RunCode(input string) Job {
	code := strings.TrimSpace(input)
	if code == "" {
		c.notify(msgEnterCode, ToastError)
		return nil
	}
	if c.state.Loading {
		return nil
	}

	c.setLoading(true)
	c.code.Reset(Entry{Kind: EntryTyping})

	req := api.CodeRequest{
		Code:     code,
		Task:     c.state.CodeTask,
		Language: c.state.CodeLanguage,
		Provider: c.state.ProviderID,
		Model:    c.state.ModelID,
	}
	c.log.Debug("run code",
		zap.String("task", req.Task),
		zap.String("language", req.Language),
		zap.String("provider", req.Provider))

	backend := c.backend
	return func(ctx context.Context) Outcome {
		reply, err := backend.Code(ctx, req)
		return codeOutcome{reply: reply, err: err}
	}
}

type codeOutcome struct {
	reply *api.Reply
	err   error
}

func (o codeOutcome) apply(c *Controller) Job {
	defer c.setLoading(false)

	switch {
	case o.err != nil:
		c.log.Warn("code request failed", zap.Error(o.err))
		c.code.Reset(Entry{Kind: EntryError, Text: networkErrorPrefix + o.err.Error()})
	case o.reply.Success:
		c.code.Reset(Entry{Kind: EntryAssistant, Text: o.reply.Response})
		c.lastResult = o.reply.Response
	default:
		c.code.Reset(Entry{Kind: EntryError, Text: replyError(o.reply.Error)})
	}
	return nil
}

// GenerateImage asks for an image and downloads it for preview.
func (c *Controller) GenerateImage(input string) Job {
	prompt := strings.TrimSpace(input)
	if prompt == "" {
		c.notify(msgEnterPrompt, ToastError)
		return nil
	}
	if c.state.Loading {
		return nil
	}

	c.setLoading(true)
	c.image.Reset(Entry{Kind: EntryTyping})

	model := c.state.ModelID
	if model == "" {
		model = DefaultImageModel
	}
	req := api.ImageRequest{
		Prompt:  prompt,
		Model:   model,
		Size:    c.state.ImageSize,
		Quality: ImageQuality,
	}
	c.log.Debug("generate image", zap.String("model", req.Model), zap.String("size", req.Size))

	backend := c.backend
	return func(ctx context.Context) Outcome {
		reply, err := backend.Image(ctx, req)
		o := imageOutcome{prompt: prompt, reply: reply, err: err}
		if err == nil && reply.Success {
			o.picture, o.loadErr = backend.FetchImage(ctx, reply.ImageURL)
		}
		return o
	}
}

type imageOutcome struct {
	prompt  string
	reply   *api.ImageReply
	err     error
	picture image.Image
	loadErr error
}

func (o imageOutcome) apply(c *Controller) Job {
	defer c.setLoading(false)

	switch {
	case o.err != nil:
		c.log.Warn("image request failed", zap.Error(o.err))
		c.image.Reset(Entry{Kind: EntryError, Text: networkErrorPrefix + o.err.Error()})
	case o.reply.Success:
		if o.loadErr != nil {
			c.log.Warn("image download failed", zap.String("url", o.reply.ImageURL), zap.Error(o.loadErr))
		}
		c.image.Reset(Entry{Kind: EntryImage, Image: &ImageResult{
			URL:     o.reply.ImageURL,
			Prompt:  o.prompt,
			Model:   o.reply.Model,
			Note:    o.reply.Note,
			Picture: o.picture,
			LoadErr: o.loadErr,
		}})
		c.lastResult = o.reply.ImageURL
	default:
		c.image.Reset(Entry{Kind: EntryError, Text: replyError(o.reply.Error)})
	}
	return nil
}

// ClearChat drops the server-side conversation. The chat pane is reset
// whether or not the backend acknowledged.
func (c *Controller) ClearChat() Job {
	backend := c.backend
	return func(ctx context.Context) Outcome {
		_, err := backend.Clear(ctx)
		return clearOutcome{err: err}
	}
}

type clearOutcome struct {
	err error
}

func (o clearOutcome) apply(c *Controller) Job {
	if o.err != nil {
		c.log.Warn("clear conversation", zap.Error(o.err))
	}
	c.chat.Reset(ClearedEntry())
	c.notify(msgCleared, ToastInfo)
	return nil
}

// SaveConfig submits the five provider keys. On success the modal closes and
// the returned outcome chains a provider reload.
func (c *Controller) SaveConfig(creds api.Credentials) Job {
	creds = api.Credentials{
		GroqKey:        strings.TrimSpace(creds.GroqKey),
		GeminiKey:      strings.TrimSpace(creds.GeminiKey),
		HuggingFaceKey: strings.TrimSpace(creds.HuggingFaceKey),
		OpenAIKey:      strings.TrimSpace(creds.OpenAIKey),
		AnthropicKey:   strings.TrimSpace(creds.AnthropicKey),
	}
	backend := c.backend
	return func(ctx context.Context) Outcome {
		ack, err := backend.Configure(ctx, creds)
		return configOutcome{ack: ack, err: err}
	}
}

type configOutcome struct {
	ack *api.Ack
	err error
}

func (o configOutcome) apply(c *Controller) Job {
	switch {
	case o.err != nil:
		c.log.Warn("save configuration", zap.Error(o.err))
		c.notify(msgNetworkError, ToastError)
		return nil
	case !o.ack.Success:
		msg := o.ack.Error
		if msg == "" {
			msg = msgSaveFailed
		}
		c.notify(msg, ToastError)
		return nil
	}
	c.notify(o.ack.Message, ToastSuccess)
	c.CloseConfig()
	return c.LoadProviders()
}

// LoadHistory rebuilds the chat pane from the conversation the backend keeps
// for this session. Ignored while a request is in flight.
func (c *Controller) LoadHistory() Job {
	if c.state.Loading {
		return nil
	}
	backend := c.backend
	return func(ctx context.Context) Outcome {
		msgs, err := backend.History(ctx)
		return historyOutcome{msgs: msgs, err: err}
	}
}

type historyOutcome struct {
	msgs []api.HistoryMessage
	err  error
}

func (o historyOutcome) apply(c *Controller) Job {
	if o.err != nil {
		c.log.Warn("load history", zap.Error(o.err))
		c.notify(msgHistoryFailed, ToastError)
		return nil
	}
	if c.state.Loading {
		return nil
	}

	var entries []Entry
	for _, m := range o.msgs {
		switch m.Role {
		case "user":
			entries = append(entries, Entry{Kind: EntryUser, Text: m.Content})
		case "assistant":
			entries = append(entries, Entry{Kind: EntryAssistant, Text: m.Content})
		}
	}
	if len(entries) == 0 {
		entries = []Entry{WelcomeEntry()}
	}
	c.chat.Reset(entries...)
	return nil
}
