package main

import (
	"os"

	"github.com/kir-gadjello/unichat/api"
	"github.com/kir-gadjello/unichat/render"
	"github.com/kir-gadjello/unichat/session"
	"github.com/kir-gadjello/unichat/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app bundles everything a command needs.
type app struct {
	cfg       RunConfig
	log       *zap.Logger
	client    *api.Client
	store     *store.Prefs
	ctrl      *session.Controller
	formatter render.Formatter
	closeLog  func()
}

// appFromCommand loads the config file and resolves flags for cmd.
func appFromCommand(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	fileCfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	rc, err := getRunConfig(cmd, fileCfg)
	if err != nil {
		return nil, err
	}
	return newApp(rc)
}

func newApp(rc RunConfig) (*app, error) {
	logger, closeLog, err := newLogger(rc.LogFile, rc.Verbose)
	if err != nil {
		return nil, err
	}

	client, err := api.New(rc.BaseURL,
		api.WithTimeout(rc.Timeout),
		api.WithLogger(logger.Named("api")),
		api.WithVerbose(rc.Verbose))
	if err != nil {
		closeLog()
		return nil, err
	}

	prefs, err := store.Open(rc.StorePath)
	if err != nil {
		logger.Warn("preference store unavailable, using memory",
			zap.String("path", rc.StorePath), zap.Error(err))
		prefs, err = store.Open(store.MemoryPath)
	}
	var sessionPrefs session.Prefs
	if err == nil {
		sessionPrefs = prefs
	} else {
		logger.Warn("preferences disabled", zap.Error(err))
		prefs = nil
	}

	temp := rc.Temperature
	ctrl := session.New(client, sessionPrefs,
		session.WithLogger(logger.Named("session")),
		session.WithDefaults(session.Defaults{
			Mode:         rc.Mode,
			SystemPrompt: rc.SystemPrompt,
			Temperature:  &temp,
			CodeTask:     rc.CodeTask,
			CodeLanguage: rc.CodeLanguage,
			ImageSize:    rc.ImageSize,
		}))
	ctrl.InitTheme()

	md, err := render.NewMarkdown(rc.Renderer)
	if err != nil {
		md = render.Plain{}
	}
	formatter := render.Formatter{Markdown: md}
	if rc.Highlight {
		formatter.Highlighter = render.Chroma{}
	}

	logger.Info("unichat started",
		zap.String("base_url", client.BaseURL()),
		zap.String("renderer", rc.Renderer),
		zap.String("theme", string(ctrl.State().Theme)))

	return &app{
		cfg:       rc,
		log:       logger,
		client:    client,
		store:     prefs,
		ctrl:      ctrl,
		formatter: formatter,
		closeLog:  closeLog,
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.closeLog()
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
