package session

import (
	"fmt"
	"math"
	"strings"
)

type Mode string

const (
	ModeChat  Mode = "chat"
	ModeCode  Mode = "code"
	ModeImage Mode = "image"
)

var Modes = []Mode{ModeChat, ModeCode, ModeImage}

func (m Mode) Label() string {
	switch m {
	case ModeChat:
		return "💬 Chat"
	case ModeCode:
		return "💻 Code Assist"
	case ModeImage:
		return "🎨 Image Generation"
	}
	return string(m)
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want chat, code or image)", s)
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	// ThemePrefKey is the preference entry the theme is persisted under.
	ThemePrefKey = "theme"
)

// ParseTheme maps a persisted value to a theme. Anything but "light" is dark.
func ParseTheme(s string) Theme {
	if s == string(ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Icon() string {
	if t == ThemeLight {
		return "☀️"
	}
	return "🌙"
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

const (
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0

	DefaultCodeTask     = "explain"
	DefaultCodeLanguage = "python"
	DefaultImageSize    = "1024x1024"
	DefaultImageModel   = "pollinations"
	ImageQuality        = "standard"
)

var (
	CodeTasks     = []string{"explain", "debug", "generate", "review"}
	CodeLanguages = []string{
		"python", "javascript", "typescript", "java", "cpp", "csharp",
		"go", "rust", "php", "ruby", "sql", "bash",
	}
	ImageSizes = []string{"1024x1024", "512x512", "1792x1024", "1024x1792"}
)

// State is the session state every dispatcher reads its request from.
type State struct {
	Mode       Mode
	ProviderID string
	ModelID    string
	Loading    bool
	Theme      Theme

	SystemPrompt string
	Temperature  float64
	CodeTask     string
	CodeLanguage string
	ImageSize    string
}

// ClampTemperature keeps t inside [MinTemperature, MaxTemperature] and rounds
// it to one decimal, the resolution of the slider it replaces.
func ClampTemperature(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultTemperature
	}
	t = math.Max(MinTemperature, math.Min(MaxTemperature, t))
	return math.Round(t*10) / 10
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// cycle returns the entry step positions away from cur, wrapping around.
// An unknown cur starts from the first entry.
func cycle(list []string, cur string, step int) string {
	if len(list) == 0 {
		return cur
	}
	idx := 0
	for i, item := range list {
		if item == cur {
			idx = i
			break
		}
	}
	n := len(list)
	return list[((idx+step)%n+n)%n]
}
