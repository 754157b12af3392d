// Package main provides the meetborg CLI entry point.
// meetborg is the operator console for scheduling and triggering automated
// bot attendance of video-conference meetings.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VyankateshKulkarni13/meetborg/cmd"
	"github.com/VyankateshKulkarni13/meetborg/config"
	"github.com/VyankateshKulkarni13/meetborg/pkg/buildinfo"
)

// Global flags.
var (
	apiBaseURL   string
	timeout      time.Duration
	outputFormat string
	debug        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "meetborg",
	Short: "meetborg CLI - meeting bot operator console",
	Long: `meetborg is the command-line interface for the meetborg meeting bot.

The backend schedules a browser bot into video meetings (Google Meet,
Zoom, Microsoft Teams, Webex, Jitsi) and records what happened. This CLI
registers accounts, schedules meetings from their URLs, triggers joins,
and manages the bot's platform credentials.

COMMON WORKFLOWS:
  First run:        meetborg auth register -u me  →  meetborg auth login -u me
  Schedule:         meetborg detect <url>  →  meetborg meeting create <url> -t "Title"
  Operate:          meetborg meeting list  →  meetborg meeting join <id>
  Bot accounts:     meetborg platform add google_meet -e bot@example.com

DISCOVERY:
  meetborg <command> --help   Subcommands, flags, and examples`,
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of the meetborg CLI.

Examples:
  meetborg version`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		info := buildinfo.Get()
		out := cobraCmd.OutOrStdout()
		fmt.Fprintf(out, "meetborg version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
		fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
	},
}

// loadCLIConfig loads the configuration and applies global flag overrides.
// Command groups receive this as their LoadConfig dependency.
func loadCLIConfig() (*config.CLIConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if apiBaseURL != "" {
		cfg.APIBaseURL = apiBaseURL
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if outputFormat != "" {
		cfg.OutputFormat = config.OutputFormat(outputFormat)
	}
	if debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Backend API base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-default", "", "Default output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	authDeps := cmd.DefaultAuthDeps()
	authDeps.LoadConfig = loadCLIConfig
	meetingDeps := cmd.DefaultMeetingDeps()
	meetingDeps.LoadConfig = loadCLIConfig
	platformDeps := cmd.DefaultPlatformDeps()
	platformDeps.LoadConfig = loadCLIConfig
	detectDeps := cmd.DefaultDetectDeps()
	detectDeps.LoadConfig = loadCLIConfig

	rootCmd.AddCommand(cmd.NewAuthCommand(authDeps))
	rootCmd.AddCommand(cmd.NewMeetingCommand(meetingDeps))
	rootCmd.AddCommand(cmd.NewPlatformCommand(platformDeps))
	rootCmd.AddCommand(cmd.NewDetectCommand(detectDeps))
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
