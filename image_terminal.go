package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

// detectTerminalImageSupport reports whether the terminal understands the
// iTerm2 inline image protocol (iTerm2, WezTerm, Kitty, recent Alacritty and
// Windows Terminal).
func detectTerminalImageSupport() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	termProg := strings.ToLower(os.Getenv("TERM_PROGRAM"))

	switch {
	case os.Getenv("ITERM_SESSION_ID") != "" || strings.Contains(termProg, "iterm"):
		return true
	case strings.Contains(termProg, "wezterm") || strings.Contains(term, "wezterm"):
		return true
	case strings.Contains(term, "kitty"):
		return true
	case strings.Contains(term, "alacritty"):
		return true
	case strings.Contains(termProg, "windowsterminal"):
		return true
	}
	// Konsole and the rest either lack the protocol or garble base64 payloads.
	return false
}

// inlineImage encodes img as an iTerm2 OSC 1337 inline image, scaled down to
// maxHeight pixels when taller.
func inlineImage(img image.Image, name string, maxHeight int) (string, error) {
	if maxHeight > 0 && img.Bounds().Dy() > maxHeight {
		img = resize.Resize(0, uint(maxHeight), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encode error: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	nameB64 := base64.StdEncoding.EncodeToString([]byte(name))
	return fmt.Sprintf("\033]1337;File=name=%s;size=%d;inline=1:%s\a", nameB64, buf.Len(), encoded), nil
}
