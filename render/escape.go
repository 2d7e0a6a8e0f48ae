package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Escape makes backend text safe to print: escape sequences are stripped and
// control characters other than newline and tab are dropped.
func Escape(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
