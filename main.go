package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func isInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unichat",
		Short: "Terminal client for the unified AI chatbot backend",
		Long: "unichat talks to a unified chatbot backend serving chat, code assistance and\n" +
			"image generation. Without a subcommand it opens the interactive interface.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ~/.unichat/config.yaml)")
	pf.StringP("base-url", "u", "", "Backend URL (env UNICHAT_BASE_URL, default http://localhost:5000)")
	pf.Int("timeout", 120, "Request timeout in seconds")
	pf.StringP("mode", "M", "", "Start mode: chat, code or image")
	pf.StringP("system", "p", "", "System prompt for chat")
	pf.Float64P("temperature", "t", 0.7, "Chat temperature (0-2)")
	pf.String("renderer", "", "Markdown renderer: termmd, glamour or plain")
	pf.Bool("no-highlight", false, "Disable syntax highlighting of code blocks")
	pf.String("log-file", "", "Log file (env UNICHAT_LOG_FILE, default ~/.unichat/unichat.log)")
	pf.BoolP("verbose", "v", false, "Log request and response bodies")

	rootCmd.AddCommand(
		newChatCmd(),
		newCodeCmd(),
		newImageCmd(),
		newProvidersCmd(),
		newConfigureCmd(),
		newClearCmd(),
		newThemeCmd(),
		newDoctorCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
