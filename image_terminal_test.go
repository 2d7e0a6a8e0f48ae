package main

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"
)

func TestInlineImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 200))

	out, err := inlineImage(img, "preview.png", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "\033]1337;File=name=") || !strings.HasSuffix(out, "\a") {
		t.Fatalf("not an OSC 1337 sequence: %q", out[:20])
	}

	payload := out[strings.Index(out, "inline=1:")+len("inline=1:") : len(out)-1]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("payload is not a png: %v", err)
	}
	if h := decoded.Bounds().Dy(); h != 100 {
		t.Errorf("expected height 100, got %d", h)
	}
	if w := decoded.Bounds().Dx(); w != 20 {
		t.Errorf("expected width 20, got %d", w)
	}
}

func TestDetectTerminalImageSupport(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		support bool
	}{
		{"iterm session", map[string]string{"ITERM_SESSION_ID": "w0t0p0"}, true},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, true},
		{"kitty", map[string]string{"TERM": "xterm-kitty"}, true},
		{"konsole", map[string]string{"TERM_PROGRAM": "konsole"}, false},
		{"dumb", map[string]string{"TERM": "dumb"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TERM", "")
			t.Setenv("TERM_PROGRAM", "")
			t.Setenv("ITERM_SESSION_ID", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if got := detectTerminalImageSupport(); got != tc.support {
				t.Errorf("expected %v, got %v", tc.support, got)
			}
		})
	}
}
