// Package cmd provides CLI commands for the meetborg tool.
package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/config"
	"github.com/VyankateshKulkarni13/meetborg/credentials"
	mberrors "github.com/VyankateshKulkarni13/meetborg/pkg/errors"
	"github.com/VyankateshKulkarni13/meetborg/pkg/logging"
)

// newAPIClient builds an API client from config, seeding the session with
// the stored bearer token when one is available. An unauthenticated client
// is still usable for the endpoints that allow it.
func newAPIClient(cfg *config.CLIConfig) (*client.Client, error) {
	session := client.NewSession("")
	if store, err := credentials.NewStore(); err == nil {
		if creds, err := store.GetActiveCredential(); err == nil {
			session.Replace(creds.Token)
		}
	}
	return client.New(cfg.APIBaseURL, session, &client.Options{
		Timeout: cfg.Timeout,
		Logger:  newLogger(cfg),
	})
}

// newLogger returns a debug logger when debug mode is on, otherwise a
// no-op logger so command output stays clean.
func newLogger(cfg *config.CLIConfig) logging.Logger {
	if !cfg.Debug {
		return logging.NewNopLogger()
	}
	return logging.NewLogger(&logging.Config{
		Level:       logging.LevelDebug,
		ServiceName: "meetborg",
	})
}

// resolveOutputFormat picks the per-command override when set, falling
// back to the configured default.
func resolveOutputFormat(cfg *config.CLIConfig, override string) (config.OutputFormat, error) {
	if override == "" {
		return cfg.OutputFormat, nil
	}
	format := config.OutputFormat(override)
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format: %s", override)
	}
	return format, nil
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// outputYAML writes data as YAML to stdout.
func outputYAML(data any) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(data)
}

// confirm asks a yes/no question on stdin and reports whether the answer
// was affirmative. Anything but y/yes is a no.
func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// readSecret prompts for a value with terminal echo disabled, falling
// back to plain line input when stdin is not a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	secretBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err == nil {
		return strings.TrimSpace(string(secretBytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// friendlyError adds a login hint to unauthorized failures. Everything
// else passes through; validation messages already carry the backend's
// field text verbatim.
func friendlyError(err error) error {
	if err == nil {
		return nil
	}
	if mberrors.IsUnauthorized(err) {
		return fmt.Errorf("%w - run 'meetborg auth login' to authenticate", err)
	}
	return err
}

// formatTime renders an optional timestamp for table output.
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens s for fixed-width table columns.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
