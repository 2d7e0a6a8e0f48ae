package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kir-gadjello/unichat/api"
	"github.com/kir-gadjello/unichat/render"
	"github.com/kir-gadjello/unichat/session"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type CodeConfig struct {
	Task     *string `yaml:"task,omitempty"`
	Language *string `yaml:"language,omitempty"`
}

type ImageConfig struct {
	Size *string `yaml:"size,omitempty"`
}

type ConfigFile struct {
	BaseURL      *string      `yaml:"base_url,omitempty"`
	Timeout      *int         `yaml:"timeout,omitempty"` // Seconds
	Mode         *string      `yaml:"mode,omitempty"`
	SystemPrompt *string      `yaml:"system_prompt,omitempty"`
	Temperature  *float64     `yaml:"temperature,omitempty"`
	Renderer     *string      `yaml:"renderer,omitempty"`
	Highlight    *bool        `yaml:"highlight,omitempty"`
	LogFile      *string      `yaml:"log_file,omitempty"`
	Verbose      *bool        `yaml:"verbose,omitempty"`
	Code         *CodeConfig  `yaml:"code,omitempty"`
	Image        *ImageConfig `yaml:"image,omitempty"`
}

// appDir is where config, preferences and logs live.
func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".unichat"
	}
	return filepath.Join(home, ".unichat")
}

func defaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}

// loadConfig reads the yaml config. A missing file yields an empty config; a
// file that does not parse is an error.
func loadConfig(path string) (*ConfigFile, error) {
	if path == "" {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ConfigFile{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

type RunConfig struct {
	BaseURL      string
	Timeout      time.Duration
	Mode         session.Mode
	SystemPrompt string
	Temperature  float64
	Renderer     string
	Highlight    bool
	LogFile      string
	Verbose      bool
	CodeTask     string
	CodeLanguage string
	ImageSize    string
	StorePath    string
}

func getFirstEnv(fallback string, envVars ...string) string {
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return fallback
}

// flagChanged reports whether the flag exists on cmd and was set explicitly.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// getRunConfig resolves settings with the precedence flag > env > config
// file > built-in default.
func getRunConfig(cmd *cobra.Command, cfg *ConfigFile) (RunConfig, error) {
	if cfg == nil {
		cfg = &ConfigFile{}
	}
	dir := appDir()

	rc := RunConfig{
		BaseURL:      api.DefaultBaseURL,
		Timeout:      api.DefaultTimeout,
		Mode:         session.ModeChat,
		Temperature:  session.DefaultTemperature,
		Renderer:     render.RendererTermMD,
		Highlight:    true,
		LogFile:      filepath.Join(dir, "unichat.log"),
		CodeTask:     session.DefaultCodeTask,
		CodeLanguage: session.DefaultCodeLanguage,
		ImageSize:    session.DefaultImageSize,
		StorePath:    filepath.Join(dir, "prefs.db"),
	}

	// config file
	if cfg.BaseURL != nil {
		rc.BaseURL = *cfg.BaseURL
	}
	if cfg.Timeout != nil {
		rc.Timeout = time.Duration(*cfg.Timeout) * time.Second
	}
	if cfg.Mode != nil {
		m, err := session.ParseMode(*cfg.Mode)
		if err != nil {
			return rc, fmt.Errorf("config: %w", err)
		}
		rc.Mode = m
	}
	if cfg.SystemPrompt != nil {
		rc.SystemPrompt = *cfg.SystemPrompt
	}
	if cfg.Temperature != nil {
		rc.Temperature = *cfg.Temperature
	}
	if cfg.Renderer != nil {
		rc.Renderer = *cfg.Renderer
	}
	if cfg.Highlight != nil {
		rc.Highlight = *cfg.Highlight
	}
	if cfg.LogFile != nil {
		rc.LogFile = *cfg.LogFile
	}
	if cfg.Verbose != nil {
		rc.Verbose = *cfg.Verbose
	}
	if cfg.Code != nil {
		if cfg.Code.Task != nil {
			rc.CodeTask = *cfg.Code.Task
		}
		if cfg.Code.Language != nil {
			rc.CodeLanguage = *cfg.Code.Language
		}
	}
	if cfg.Image != nil && cfg.Image.Size != nil {
		rc.ImageSize = *cfg.Image.Size
	}

	// environment
	rc.BaseURL = getFirstEnv(rc.BaseURL, "UNICHAT_BASE_URL")
	rc.LogFile = getFirstEnv(rc.LogFile, "UNICHAT_LOG_FILE")

	// CLI flags override everything
	flags := cmd.Flags()
	if flagChanged(cmd, "base-url") {
		rc.BaseURL, _ = flags.GetString("base-url")
	}
	if flagChanged(cmd, "timeout") {
		sec, _ := flags.GetInt("timeout")
		rc.Timeout = time.Duration(sec) * time.Second
	}
	if flagChanged(cmd, "mode") {
		v, _ := flags.GetString("mode")
		m, err := session.ParseMode(v)
		if err != nil {
			return rc, err
		}
		rc.Mode = m
	}
	if flagChanged(cmd, "system") {
		rc.SystemPrompt, _ = flags.GetString("system")
	}
	if flagChanged(cmd, "temperature") {
		rc.Temperature, _ = flags.GetFloat64("temperature")
	}
	if flagChanged(cmd, "renderer") {
		rc.Renderer, _ = flags.GetString("renderer")
	}
	if flagChanged(cmd, "no-highlight") {
		off, _ := flags.GetBool("no-highlight")
		rc.Highlight = !off
	}
	if flagChanged(cmd, "log-file") {
		rc.LogFile, _ = flags.GetString("log-file")
	}
	if flagChanged(cmd, "verbose") {
		rc.Verbose, _ = flags.GetBool("verbose")
	}
	if flagChanged(cmd, "task") {
		rc.CodeTask, _ = flags.GetString("task")
	}
	if flagChanged(cmd, "lang") {
		rc.CodeLanguage, _ = flags.GetString("lang")
	}
	if flagChanged(cmd, "size") {
		rc.ImageSize, _ = flags.GetString("size")
	}

	rc.BaseURL = strings.TrimSpace(rc.BaseURL)
	rc.Temperature = session.ClampTemperature(rc.Temperature)
	if rc.Timeout <= 0 {
		rc.Timeout = api.DefaultTimeout
	}
	if _, err := render.NewMarkdown(rc.Renderer); err != nil {
		return rc, err
	}
	if err := session.CheckChoice(session.CodeTasks, rc.CodeTask); err != nil {
		return rc, fmt.Errorf("code task: %w", err)
	}
	if err := session.CheckChoice(session.CodeLanguages, rc.CodeLanguage); err != nil {
		return rc, fmt.Errorf("code language: %w", err)
	}
	if err := session.CheckChoice(session.ImageSizes, rc.ImageSize); err != nil {
		return rc, fmt.Errorf("image size: %w", err)
	}
	return rc, nil
}
