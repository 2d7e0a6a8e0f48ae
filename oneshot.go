package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kir-gadjello/unichat/api"
	"github.com/kir-gadjello/unichat/render"
	"github.com/kir-gadjello/unichat/session"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// inlineImageHeight caps inline image previews, in pixels.
const inlineImageHeight = 768

// readInput joins args, or reads stdin when it is piped.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if isInteractive(os.Stdin.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// toastError turns a visible error toast into an error.
func toastError(c *session.Controller) error {
	if t, ok := c.Toast(); ok && t.Kind == session.ToastError {
		return errors.New(t.Text)
	}
	return nil
}

// loadRegistry switches to mode and fetches providers for it.
func loadRegistry(ctx context.Context, a *app, mode session.Mode) error {
	a.ctrl.SetMode(mode)
	a.ctrl.Do(ctx, a.ctrl.LoadProviders())
	return toastError(a.ctrl)
}

func selectFromFlags(cmd *cobra.Command, c *session.Controller) error {
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		if err := c.SelectProvider(provider); err != nil {
			return fmt.Errorf("provider %q: %w", provider, err)
		}
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		if err := c.SelectModel(model); err != nil {
			return fmt.Errorf("model %q: %w", model, err)
		}
	}
	return nil
}

// dispatch runs job to completion. A nil job means the controller refused
// the input and explained why in a toast.
func dispatch(ctx context.Context, c *session.Controller, job session.Job) error {
	if job == nil {
		if err := toastError(c); err != nil {
			return err
		}
		return errors.New("nothing to send")
	}
	c.Do(ctx, job)
	return nil
}

// printResult prints the newest entry of the mode's pane. An error entry is
// returned as the command error.
func printResult(w io.Writer, a *app, mode session.Mode) error {
	entries := a.ctrl.Entries(mode)
	if len(entries) == 0 {
		return nil
	}
	e := entries[len(entries)-1]
	tty := isInteractive(os.Stdout.Fd())

	switch e.Kind {
	case session.EntryError:
		return errors.New(e.Text)
	case session.EntryImage:
		return printImage(w, a, e, tty)
	case session.EntryAssistant:
		if tty {
			fmt.Fprintln(w, a.formatter.Format(e.Text, terminalWidth(), a.ctrl.State().Theme))
		} else {
			fmt.Fprintln(w, e.Text)
		}
	}
	return nil
}

func printImage(w io.Writer, a *app, e session.Entry, tty bool) error {
	r := e.Image
	if !tty {
		fmt.Fprintln(w, r.URL)
		return nil
	}

	if r.Picture != nil && detectTerminalImageSupport() {
		seq, err := inlineImage(r.Picture, "unichat.png", inlineImageHeight)
		if err == nil {
			prompt, meta := r.Caption()
			fmt.Fprintln(w, seq)
			fmt.Fprintf(w, "%s\n%s\n%s\n", prompt, meta, r.URL)
			return nil
		}
		a.log.Debug("inline image failed, using half blocks")
	}

	fmt.Fprintln(w, render.Pane([]session.Entry{e}, render.PaneOptions{
		Width:   terminalWidth(),
		Styles:  render.NewStyles(a.ctrl.State().Theme),
		Profile: termenv.ColorProfile(),
	}))
	return nil
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "P", "", "Provider id (default: best configured provider)")
	cmd.Flags().StringP("model", "m", "", "Model id (default: first model of the provider)")
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one chat message and print the reply",
		Long:  "Sends a message (arguments or stdin) to the backend. The server keeps the\nconversation, so consecutive calls share history until 'unichat clear'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := loadRegistry(ctx, a, session.ModeChat); err != nil {
				return err
			}
			if err := selectFromFlags(cmd, a.ctrl); err != nil {
				return err
			}
			input, err := readInput(args)
			if err != nil {
				return err
			}
			if err := dispatch(ctx, a.ctrl, a.ctrl.SendChat(input)); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a, session.ModeChat)
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func newCodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code [code]",
		Short: "Explain, debug, generate or review code",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := loadRegistry(ctx, a, session.ModeCode); err != nil {
				return err
			}
			if err := selectFromFlags(cmd, a.ctrl); err != nil {
				return err
			}

			var input string
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				input = string(data)
			} else if input, err = readInput(args); err != nil {
				return err
			}

			if err := dispatch(ctx, a.ctrl, a.ctrl.RunCode(input)); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a, session.ModeCode)
		},
	}
	addSelectionFlags(cmd)
	cmd.Flags().StringP("file", "f", "", "Read code from file")
	cmd.Flags().String("task", session.DefaultCodeTask, "Task: "+strings.Join(session.CodeTasks, ", "))
	cmd.Flags().String("lang", session.DefaultCodeLanguage, "Language: "+strings.Join(session.CodeLanguages, ", "))
	return cmd
}

func newImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [prompt]",
		Short: "Generate an image and preview it",
		Long:  "Generates an image from a prompt. On a terminal the image is shown inline\n(iTerm2 protocol) or as a half-block preview; otherwise its URL is printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := loadRegistry(ctx, a, session.ModeImage); err != nil {
				return err
			}
			if err := selectFromFlags(cmd, a.ctrl); err != nil {
				return err
			}
			input, err := readInput(args)
			if err != nil {
				return err
			}
			if err := dispatch(ctx, a.ctrl, a.ctrl.GenerateImage(input)); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a, session.ModeImage)
		},
	}
	addSelectionFlags(cmd)
	cmd.Flags().String("size", session.DefaultImageSize, "Image size: "+strings.Join(session.ImageSizes, ", "))
	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and models per mode",
		Long:  "Lists the providers the backend offers. The provider marked with '*' is the\none selected by default. Use --mode to show a single mode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			modes := session.Modes
			if flagChanged(cmd, "mode") {
				modes = []session.Mode{a.cfg.Mode}
			}

			ctx := cmd.Context()
			if err := loadRegistry(ctx, a, modes[0]); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, mode := range modes {
				if i > 0 {
					fmt.Fprintln(w)
				}
				a.ctrl.SetMode(mode)
				printProviders(w, a.ctrl, mode)
			}
			return nil
		},
	}
}

func printProviders(w io.Writer, c *session.Controller, mode session.Mode) {
	fmt.Fprintln(w, mode.Label())
	selected := c.State().ProviderID

	relevant := session.Relevant(c.Providers(), mode)
	if len(relevant) == 0 {
		fmt.Fprintf(w, "    %s\n", session.NoProvidersLabel)
		return
	}
	for _, p := range relevant {
		marker := " "
		if p.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s  (%s)\n", marker, session.OptionLabel(p), p.ID)

		if len(p.Models) > 0 {
			ids := make([]string, len(p.Models))
			for i, m := range p.Models {
				ids[i] = m.ID
			}
			fmt.Fprintf(w, "      models: %s\n", strings.Join(ids, ", "))
		}
	}
}

// credentialFields are prompted in this order by configure.
var credentialFields = []struct {
	label string
	set   func(*api.Credentials, string)
}{
	{"Groq API key", func(c *api.Credentials, v string) { c.GroqKey = v }},
	{"Gemini API key", func(c *api.Credentials, v string) { c.GeminiKey = v }},
	{"HuggingFace API key", func(c *api.Credentials, v string) { c.HuggingFaceKey = v }},
	{"OpenAI API key", func(c *api.Credentials, v string) { c.OpenAIKey = v }},
	{"Anthropic API key", func(c *api.Credentials, v string) { c.AnthropicKey = v }},
}

// readCredentials prompts for each key with echo off on a terminal, or reads
// one key per line from piped stdin. Blank answers leave a key unchanged.
func readCredentials(stderr io.Writer) (api.Credentials, error) {
	var creds api.Credentials
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		fmt.Fprintln(stderr, "Enter API keys (leave blank to keep the current value).")
		for _, f := range credentialFields {
			fmt.Fprintf(stderr, "%s: ", f.label)
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(stderr)
			if err != nil {
				return creds, fmt.Errorf("read %s: %w", f.label, err)
			}
			f.set(&creds, string(secret))
		}
		return creds, nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for _, f := range credentialFields {
		if !scanner.Scan() {
			break
		}
		f.set(&creds, scanner.Text())
	}
	return creds, scanner.Err()
}

func newConfigureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Store provider API keys on the backend",
		Long:  "Prompts for the Groq, Gemini, HuggingFace, OpenAI and Anthropic keys. When\nstdin is piped, one key per line is read in that order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			creds, err := readCredentials(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			c := a.ctrl
			c.Do(cmd.Context(), c.SaveConfig(creds))
			t, ok := c.Toast()
			if !ok {
				return nil
			}
			if t.Kind == session.ToastError {
				return errors.New(t.Text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ "+t.Text)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the server-side chat conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.ctrl.Do(cmd.Context(), a.ctrl.ClearChat())
			if t, ok := a.ctrl.Toast(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), t.Text)
			}
			return nil
		},
	}
}

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle|reset]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.ctrl
			if len(args) == 1 {
				want := strings.ToLower(strings.TrimSpace(args[0]))
				switch want {
				case "toggle":
					err = c.ToggleTheme()
				case "reset":
					err = c.ResetTheme()
				case string(session.ThemeDark), string(session.ThemeLight):
					if c.State().Theme != session.Theme(want) {
						err = c.ToggleTheme()
					}
				default:
					return fmt.Errorf("unknown theme %q (want dark, light, toggle or reset)", args[0])
				}
				if err != nil {
					return fmt.Errorf("save theme: %w", err)
				}
			}

			theme := c.State().Theme
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", theme.Icon(), theme)
			return nil
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage and backend reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "unichat doctor")
			fmt.Fprintln(w, "==============")

			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			if _, err := os.Stat(configPath); err == nil {
				fmt.Fprintf(w, "✅ Configuration : Found (%s)\n", configPath)
			} else {
				fmt.Fprintf(w, "⚠️  Configuration : Missing (%s), using defaults\n", configPath)
			}

			if a.store != nil {
				prefs, err := a.store.All()
				if err != nil {
					fmt.Fprintf(w, "❌ Preferences   : %v\n", err)
				} else {
					fmt.Fprintf(w, "✅ Preferences   : %s (%d stored)\n", a.store.Path(), len(prefs))
				}
			} else {
				fmt.Fprintln(w, "❌ Preferences   : Unavailable, theme will not persist")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			providers, err := a.client.Providers(ctx)
			if err != nil {
				fmt.Fprintf(w, "❌ Backend       : %s unreachable (%v)\n", a.client.BaseURL(), err)
			} else {
				configured := 0
				for _, p := range providers {
					if p.Configured {
						configured++
					}
				}
				fmt.Fprintf(w, "✅ Backend       : %s (%d providers, %d configured)\n",
					a.client.BaseURL(), len(providers), configured)
			}

			if a.cfg.LogFile != "" {
				fmt.Fprintf(w, "✅ Log file      : %s\n", a.cfg.LogFile)
			} else {
				fmt.Fprintln(w, "⚠️  Log file      : Disabled")
			}

			if detectTerminalImageSupport() {
				fmt.Fprintln(w, "✅ Inline images : Supported")
			} else {
				fmt.Fprintln(w, "⚠️  Inline images : Not supported (half-block previews)")
			}
			return nil
		},
	}
}
