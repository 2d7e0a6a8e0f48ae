package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, in := range []string{"chat", " Code ", "IMAGE"} {
		_, err := ParseMode(in)
		require.NoError(t, err, in)
	}
	_, err := ParseMode("video")
	require.Error(t, err)
}

func TestParseTheme(t *testing.T) {
	require.Equal(t, ThemeLight, ParseTheme("light"))
	require.Equal(t, ThemeDark, ParseTheme("dark"))
	require.Equal(t, ThemeDark, ParseTheme(""))
	require.Equal(t, ThemeDark, ParseTheme("solarized"))
}

func TestCycle(t *testing.T) {
	list := []string{"a", "b", "c"}
	require.Equal(t, "b", cycle(list, "a", 1))
	require.Equal(t, "a", cycle(list, "c", 1))
	require.Equal(t, "c", cycle(list, "a", -1))
	require.Equal(t, "b", cycle(list, "zzz", 1))
}

func TestPane(t *testing.T) {
	p := NewPane(WelcomeEntry())
	id := p.Append(Entry{Kind: EntryUser, Text: "hi"})
	require.NotEmpty(t, id)
	require.Equal(t, 2, p.Len())

	p.RemoveKind(EntryWelcome)
	require.Equal(t, 1, p.Len())
	require.True(t, p.Remove(id))
	require.False(t, p.Remove(id))
	require.Zero(t, p.Len())
}
