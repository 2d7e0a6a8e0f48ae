package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kir-gadjello/unichat/api"
	"github.com/kir-gadjello/unichat/session"
	"github.com/spf13/cobra"
)

// commandWithArgs returns the named subcommand with args parsed.
func commandWithArgs(t *testing.T, name string, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := newRootCmd().Find([]string{name})
	if err != nil {
		t.Fatalf("find %s: %v", name, err)
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("missing config should not fail: %v", err)
		}
		if cfg.BaseURL != nil {
			t.Error("expected empty config")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "base_url: [unterminated"))
		if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("nested sections", func(t *testing.T) {
		cfg, err := loadConfig(writeConfig(t, `
base_url: http://bot.local:5000
timeout: 30
temperature: 1.1
code:
  task: review
  language: go
image:
  size: 512x512
`))
		if err != nil {
			t.Fatal(err)
		}
		if *cfg.BaseURL != "http://bot.local:5000" || *cfg.Timeout != 30 || *cfg.Temperature != 1.1 {
			t.Errorf("unexpected top level: %+v", cfg)
		}
		if *cfg.Code.Task != "review" || *cfg.Code.Language != "go" || *cfg.Image.Size != "512x512" {
			t.Error("nested sections not parsed")
		}
	})
}

func TestGetRunConfigDefaults(t *testing.T) {
	t.Setenv("UNICHAT_BASE_URL", "")
	t.Setenv("UNICHAT_LOG_FILE", "")

	rc, err := getRunConfig(commandWithArgs(t, "chat"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rc.BaseURL != api.DefaultBaseURL || rc.Timeout != api.DefaultTimeout {
		t.Errorf("unexpected transport defaults: %+v", rc)
	}
	if rc.Mode != session.ModeChat || rc.Temperature != session.DefaultTemperature || !rc.Highlight {
		t.Errorf("unexpected session defaults: %+v", rc)
	}
	if filepath.Base(rc.StorePath) != "prefs.db" || filepath.Base(rc.LogFile) != "unichat.log" {
		t.Errorf("unexpected paths: %s %s", rc.StorePath, rc.LogFile)
	}
}

func TestGetRunConfigPrecedence(t *testing.T) {
	fileURL := "http://from-config:5000"
	fileTemp := 0.3
	fileTimeout := 15
	fileTask := "review"
	cfg := &ConfigFile{
		BaseURL:     &fileURL,
		Temperature: &fileTemp,
		Timeout:     &fileTimeout,
		Code:        &CodeConfig{Task: &fileTask},
	}

	tests := []struct {
		name    string
		env     string
		args    []string
		wantURL string
		check   func(t *testing.T, rc RunConfig)
	}{
		{
			name:    "config file",
			wantURL: fileURL,
			check: func(t *testing.T, rc RunConfig) {
				if rc.Temperature != 0.3 || rc.Timeout != 15*time.Second {
					t.Errorf("config values not applied: %+v", rc)
				}
			},
		},
		{
			name:    "env over config",
			env:     "http://from-env:5000",
			wantURL: "http://from-env:5000",
		},
		{
			name:    "flag over env",
			env:     "http://from-env:5000",
			args:    []string{"-u", "http://from-flag:5000", "-t", "1.4"},
			wantURL: "http://from-flag:5000",
			check: func(t *testing.T, rc RunConfig) {
				if rc.Temperature != 1.4 {
					t.Errorf("flag temperature not applied: %v", rc.Temperature)
				}
			},
		},
		{
			name:    "clamped temperature",
			args:    []string{"--temperature", "3.7"},
			wantURL: fileURL,
			check: func(t *testing.T, rc RunConfig) {
				if rc.Temperature != session.MaxTemperature {
					t.Errorf("expected clamp to %v, got %v", session.MaxTemperature, rc.Temperature)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("UNICHAT_BASE_URL", tc.env)
			rc, err := getRunConfig(commandWithArgs(t, "chat", tc.args...), cfg)
			if err != nil {
				t.Fatal(err)
			}
			if rc.BaseURL != tc.wantURL {
				t.Errorf("base url: got %q, want %q", rc.BaseURL, tc.wantURL)
			}
			if tc.check != nil {
				tc.check(t, rc)
			}
		})
	}
}

func TestGetRunConfigSubcommandFlags(t *testing.T) {
	fileTask := "review"
	cfg := &ConfigFile{Code: &CodeConfig{Task: &fileTask}}

	rc, err := getRunConfig(commandWithArgs(t, "code", "--lang", "rust"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rc.CodeTask != "review" || rc.CodeLanguage != "rust" {
		t.Errorf("got task %q lang %q", rc.CodeTask, rc.CodeLanguage)
	}

	rc, err = getRunConfig(commandWithArgs(t, "image", "--size", "1792x1024", "-M", "image"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rc.ImageSize != "1792x1024" || rc.Mode != session.ModeImage {
		t.Errorf("got size %q mode %q", rc.ImageSize, rc.Mode)
	}
}

func TestGetRunConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		command    string
		args       []string
		cfg        *ConfigFile
		wantChoice bool
	}{
		{name: "bad mode flag", args: []string{"--mode", "video"}},
		{name: "bad renderer", args: []string{"--renderer", "html"}},
		{name: "bad mode in config", cfg: &ConfigFile{Mode: strPtr("audio")}},
		{name: "bad task flag", command: "code", args: []string{"--task", "translate"}, wantChoice: true},
		{name: "bad language flag", command: "code", args: []string{"--lang", "klingon"}, wantChoice: true},
		{name: "bad size flag", command: "image", args: []string{"--size", "640x480"}, wantChoice: true},
		{name: "bad task in config", cfg: &ConfigFile{Code: &CodeConfig{Task: strPtr("translate")}}, wantChoice: true},
		{name: "bad language in config", cfg: &ConfigFile{Code: &CodeConfig{Language: strPtr("klingon")}}, wantChoice: true},
		{name: "bad size in config", cfg: &ConfigFile{Image: &ImageConfig{Size: strPtr("640x480")}}, wantChoice: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			command := tc.command
			if command == "" {
				command = "chat"
			}
			_, err := getRunConfig(commandWithArgs(t, command, tc.args...), tc.cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.wantChoice && !errors.Is(err, session.ErrInvalidChoice) {
				t.Errorf("expected ErrInvalidChoice, got %v", err)
			}
		})
	}
}

func TestGetRunConfigNoHighlight(t *testing.T) {
	rc, err := getRunConfig(commandWithArgs(t, "chat", "--no-highlight", "--timeout", "0"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Highlight {
		t.Error("--no-highlight ignored")
	}
	if rc.Timeout != api.DefaultTimeout {
		t.Errorf("non-positive timeout should fall back, got %v", rc.Timeout)
	}
}

func strPtr(s string) *string { return &s }
