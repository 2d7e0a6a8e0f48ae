package main

import (
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var unichatBinaryPath string

// TestMain builds the binary once
func TestMain(m *testing.M) {
	tempDir, err := os.MkdirTemp("", "unichat-e2e-build")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	if runtime.GOOS == "windows" {
		unichatBinaryPath = filepath.Join(tempDir, "unichat.exe")
	} else {
		unichatBinaryPath = filepath.Join(tempDir, "unichat")
	}

	cmd := exec.Command("go", "build", "-o", unichatBinaryPath, ".")
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\nOutput:\n%s\n", err, output)
		os.RemoveAll(tempDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tempDir)
	os.Exit(code)
}

// Case defines a simplified test scenario
type Case struct {
	Name      string
	Args      []string // CLI args
	In        string   // Stdin
	Conf      string   // Optional config.yaml content
	Want      []string // Substrings expected in output
	WantMiss  string   // Substring expected to be MISSING from output
	ExpectErr bool     // Expect command to fail
}

func TestCLI(t *testing.T) {
	backend := newMockBackend()
	server := httptest.NewServer(backend)
	defer server.Close()

	tempHome := t.TempDir()
	tempCwd := t.TempDir()
	os.WriteFile(filepath.Join(tempCwd, "snippet.go"), []byte("func add(a, b int) int { return a + b }"), 0644)

	cases := []Case{
		// --- Chat ---
		{
			Name: "Chat Default Provider",
			Args: []string{"chat", "hello"},
			Want: []string{`"message":"hello"`, `"provider":"groq"`, `"model":"llama3-70b-8192"`, `"use_history":true`},
		},
		{
			Name: "Chat Provider And Model",
			Args: []string{"chat", "-P", "openai", "-m", "gpt-4o-mini", "hi"},
			Want: []string{`"provider":"openai"`, `"model":"gpt-4o-mini"`},
		},
		{
			Name: "Chat Unconfigured Provider Without Models",
			Args: []string{"chat", "-P", "huggingface", "hi"},
			Want: []string{`"provider":"huggingface"`, `"model":""`},
		},
		{
			Name:      "Chat Image Provider Rejected",
			Args:      []string{"chat", "-P", "image", "hi"},
			Want:      []string{"provider not available in this mode"},
			ExpectErr: true,
		},
		{
			Name:      "Chat Unknown Model",
			Args:      []string{"chat", "-m", "gpt-5", "hi"},
			Want:      []string{"model not offered"},
			ExpectErr: true,
		},
		{
			Name: "Chat System Prompt And Temperature",
			Args: []string{"-p", "act like a pirate", "-t", "1.5", "chat", "hi"},
			Want: []string{`"system_prompt":"act like a pirate"`, `"temperature":1.5`},
		},
		{
			Name: "Chat Temperature Clamped",
			Args: []string{"chat", "-t", "9", "hi"},
			Want: []string{`"temperature":2`},
		},
		{
			Name: "Chat Piped Input",
			Args: []string{"chat"},
			In:   "from stdin",
			Want: []string{`"message":"from stdin"`},
		},
		{
			Name:      "Chat Empty Input",
			Args:      []string{"chat"},
			Want:      []string{"nothing to send"},
			ExpectErr: true,
		},
		{
			Name:      "Chat Backend Error",
			Args:      []string{"chat", failMessage},
			Want:      []string{"rate limited"},
			ExpectErr: true,
		},

		// --- Code ---
		{
			Name: "Code Task And Language",
			Args: []string{"code", "--task", "debug", "--lang", "go", "x := 1"},
			Want: []string{`"code":"x := 1"`, `"task":"debug"`, `"language":"go"`, `"provider":"groq"`},
		},
		{
			Name: "Code From File",
			Args: []string{"code", "-f", "snippet.go", "--task", "review"},
			Want: []string{`func add(a, b int)`, `"task":"review"`},
		},
		{
			Name:      "Code Empty",
			Args:      []string{"code"},
			Want:      []string{"Enter code first"},
			ExpectErr: true,
		},

		// --- Image ---
		{
			Name: "Image URL When Piped",
			Args: []string{"image", "--size", "512x512", "a red fox"},
			Want: []string{"/generated.png"},
		},
		{
			Name:      "Code Unknown Language",
			Args:      []string{"code", "--lang", "klingon", "x = 1"},
			Want:      []string{`invalid choice "klingon"`},
			ExpectErr: true,
		},
		{
			Name:      "Image Unknown Size",
			Args:      []string{"image", "--size", "640x480", "a cat"},
			Want:      []string{`invalid choice "640x480"`},
			ExpectErr: true,
		},
		{
			Name:      "Image Empty Prompt",
			Args:      []string{"image"},
			Want:      []string{"Enter a prompt first"},
			ExpectErr: true,
		},

		// --- Registry ---
		{
			Name: "Providers All Modes",
			Args: []string{"providers"},
			Want: []string{
				"💬 Chat",
				"* ✅ Groq [FREE]",
				"  ✅ OpenAI [Paid]",
				"🔑 HuggingFace [FREE]",
				"models: llama3-70b-8192, llama3-8b-8192",
				"🎨 Image Generation",
				"* ✅ Image Generation [FREE]",
			},
		},
		{
			Name:     "Providers Single Mode",
			Args:     []string{"providers", "--mode", "image"},
			Want:     []string{"pollinations, dall-e-3"},
			WantMiss: "Groq",
		},

		// --- Server State ---
		{
			Name: "Configure Piped Keys",
			Args: []string{"configure"},
			In:   "gsk_test\n\n\nsk-test\n\n",
			Want: []string{"API keys updated successfully!"},
		},
		{
			Name: "Clear Conversation",
			Args: []string{"clear"},
			Want: []string{"Conversation cleared"},
		},

		// --- Theme persistence (runs in order, sharing HOME) ---
		{
			Name: "Theme Default",
			Args: []string{"theme"},
			Want: []string{"🌙 dark"},
		},
		{
			Name: "Theme Set Light",
			Args: []string{"theme", "light"},
			Want: []string{"☀️ light"},
		},
		{
			Name: "Theme Persists",
			Args: []string{"theme"},
			Want: []string{"☀️ light"},
		},
		{
			Name: "Theme Toggle",
			Args: []string{"theme", "toggle"},
			Want: []string{"🌙 dark"},
		},
		{
			Name: "Theme Set Light Again",
			Args: []string{"theme", "light"},
			Want: []string{"☀️ light"},
		},
		{
			Name: "Theme Reset",
			Args: []string{"theme", "reset"},
			Want: []string{"🌙 dark"},
		},
		{
			Name: "Theme Reset Persists",
			Args: []string{"theme"},
			Want: []string{"🌙 dark"},
		},
		{
			Name: "Theme Reset Empties Store",
			Args: []string{"doctor"},
			Want: []string{"(0 stored)"},
		},
		{
			Name:      "Theme Unknown",
			Args:      []string{"theme", "sepia"},
			Want:      []string{"unknown theme"},
			ExpectErr: true,
		},

		// --- Config ---
		{
			Name: "Config File System Prompt",
			Conf: "system_prompt: from the config file\ntemperature: 0.2\n",
			Args: []string{"chat", "hi"},
			Want: []string{`"system_prompt":"from the config file"`, `"temperature":0.2`},
		},
		{
			Name: "Flag Beats Config",
			Conf: "temperature: 0.2\n",
			Args: []string{"chat", "-t", "1.1", "hi"},
			Want: []string{`"temperature":1.1`},
		},
		{
			Name:      "Malformed Config",
			Conf:      "temperature: [nope",
			Args:      []string{"chat", "hi"},
			Want:      []string{"failed to parse config file"},
			ExpectErr: true,
		},

		// --- Misc ---
		{
			Name: "Doctor",
			Args: []string{"doctor"},
			Want: []string{"✅ Backend", "3 configured", "✅ Preferences"},
		},
		{
			Name:      "TUI Needs Terminal",
			Args:      []string{},
			Want:      []string{"needs a terminal"},
			ExpectErr: true,
		},
	}

	configDir := filepath.Join(tempHome, ".unichat")
	configFile := filepath.Join(configDir, "config.yaml")
	os.MkdirAll(configDir, 0755)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			os.Remove(configFile)
			if tc.Conf != "" {
				os.WriteFile(configFile, []byte(tc.Conf), 0644)
			}

			cmd := exec.Command(unichatBinaryPath, tc.Args...)
			cmd.Dir = tempCwd
			cmd.Env = append(os.Environ(),
				fmt.Sprintf("HOME=%s", tempHome),
				fmt.Sprintf("USERPROFILE=%s", tempHome), // Windows support
				fmt.Sprintf("UNICHAT_BASE_URL=%s", server.URL),
				"TERM=dumb",
			)
			if tc.In != "" {
				cmd.Stdin = strings.NewReader(tc.In)
			}

			outputBytes, err := cmd.CombinedOutput()
			output := string(outputBytes)

			if err != nil && !tc.ExpectErr {
				t.Fatalf("Command failed: %v\nOutput: %s", err, output)
			}
			if err == nil && tc.ExpectErr {
				t.Fatalf("Command expected to fail but succeeded\nOutput: %s", output)
			}

			for _, want := range tc.Want {
				if !strings.Contains(output, want) {
					t.Errorf("Want substring %q not found in output.\n--- CLI Output ---\n%s\n------------------", want, output)
				}
			}
			if tc.WantMiss != "" && strings.Contains(output, tc.WantMiss) {
				t.Errorf("WantMiss substring %q WAS found in output.\n--- CLI Output ---\n%s\n", tc.WantMiss, output)
			}
		})
	}

	if req := backend.last("/api/configure"); req["groq_key"] != "gsk_test" || req["openai_key"] != "sk-test" {
		t.Errorf("configure sent %v", req)
	}
}
