package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/config"
	"github.com/VyankateshKulkarni13/meetborg/detect"
)

// Detect command flags.
var (
	detectOutput string
	detectStdin  bool
)

// DetectCommandDeps holds dependencies for the detect command.
type DetectCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewClient  func(cfg *config.CLIConfig) (*client.Client, error)
	In         io.Reader
}

// DefaultDetectDeps returns default dependencies for production use.
func DefaultDetectDeps() *DetectCommandDeps {
	return &DetectCommandDeps{
		LoadConfig: config.LoadConfig,
		NewClient:  newAPIClient,
		In:         os.Stdin,
	}
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(deps *DetectCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDetectDeps()
	}

	cmd := &cobra.Command{
		Use:   "detect [url]",
		Short: "Detect the platform behind a meeting URL",
		Long: `Classify a meeting URL without creating anything.

With a URL argument, one classification is performed. With --stdin,
each input line is treated as the URL being typed: calls are debounced
behind a quiet period, and only the latest input's result is printed.
Detection needs no login.

Examples:
  meetborg detect https://meet.google.com/abc-defg-hij
  meetborg detect https://zoom.us/j/123456789 -o json

  # Stream URL edits and classify the one that settles
  printf 'https://meet.goog\nhttps://meet.google.com/abc-defg-hij\n' | meetborg detect --stdin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if detectStdin {
				if len(args) > 0 {
					return fmt.Errorf("--stdin cannot be combined with a URL argument")
				}
				return runDetectStdin(cmd.Context(), deps)
			}
			if len(args) == 0 {
				return fmt.Errorf("a URL argument or --stdin is required")
			}
			return runDetectOnce(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().BoolVar(&detectStdin, "stdin", false, "Read URL input lines from stdin with debouncing")
	cmd.Flags().StringVarP(&detectOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func newDetectController(deps *DetectCommandDeps, cfg *config.CLIConfig) (*detect.Controller, error) {
	api, err := deps.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	return detect.NewController(detect.NewClientClassifier(api), &detect.Options{
		QuietPeriod: cfg.DetectQuietPeriod,
		Logger:      newLogger(cfg),
	}), nil
}

func runDetectOnce(ctx context.Context, deps *DetectCommandDeps, url string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, detectOutput)
	if err != nil {
		return err
	}

	controller, err := newDetectController(deps, cfg)
	if err != nil {
		return err
	}
	defer controller.Close()

	result, err := controller.Resolve(ctx, url)
	if err != nil {
		return friendlyError(err)
	}

	return outputDetection(format, result)
}

// runDetectStdin feeds each input line through the debounce controller,
// waits for the input to settle, and prints the surviving classification.
func runDetectStdin(ctx context.Context, deps *DetectCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, detectOutput)
	if err != nil {
		return err
	}

	controller, err := newDetectController(deps, cfg)
	if err != nil {
		return err
	}
	defer controller.Close()

	var last string
	scanner := bufio.NewScanner(deps.In)
	for scanner.Scan() {
		last = scanner.Text()
		controller.SetInput(ctx, last)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	// Input ended; classify whatever it settled on.
	result, err := controller.Resolve(ctx, last)
	if err != nil {
		return friendlyError(err)
	}
	return outputDetection(format, result)
}

func outputDetection(format config.OutputFormat, result *detect.Result) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSON(detectionView(result))
	case config.OutputFormatYAML:
		return outputYAML(detectionView(result))
	default:
		if result.Valid {
			fmt.Printf("Platform: %s\n", result.Platform.DisplayName())
			if result.MeetingCode != nil {
				fmt.Printf("Code: %s\n", *result.MeetingCode)
			}
			if result.Message != "" {
				fmt.Println(result.Message)
			}
			return nil
		}
		if result.Message != "" {
			fmt.Println(result.Message)
		} else {
			fmt.Println(detect.AdvisoryInvalidURL)
		}
		return nil
	}
}

func detectionView(result *detect.Result) map[string]any {
	view := map[string]any{
		"platform": result.Platform,
		"is_valid": result.Valid,
		"message":  result.Message,
	}
	if result.MeetingCode != nil {
		view["meeting_code"] = *result.MeetingCode
	}
	return view
}
