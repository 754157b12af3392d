package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/config"
	"github.com/VyankateshKulkarni13/meetborg/detect"
	"github.com/VyankateshKulkarni13/meetborg/meetings"
)

// Meeting command flags.
var (
	meetingOutput        string
	meetingStatusFilter  string
	meetingSkip          int
	meetingLimit         int
	meetingTitle         string
	meetingScheduledTime string
	meetingDuration      int
	meetingPurpose       string
	meetingYes           bool
)

// MeetingCommandDeps holds dependencies for meeting commands.
type MeetingCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewClient  func(cfg *config.CLIConfig) (*client.Client, error)
}

// DefaultMeetingDeps returns default dependencies for production use.
func DefaultMeetingDeps() *MeetingCommandDeps {
	return &MeetingCommandDeps{
		LoadConfig: config.LoadConfig,
		NewClient:  newAPIClient,
	}
}

// NewMeetingCommand creates the root meeting command with all subcommands.
func NewMeetingCommand(deps *MeetingCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMeetingDeps()
	}

	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Manage scheduled meetings",
		Long: `Manage meetings the bot should attend.

A meeting is created from its URL: the backend classifies the platform
from the URL before the record is accepted. Scheduled meetings can be
joined on demand, listed by status, and deleted.

Examples:
  # List all meetings
  meetborg meeting list

  # Schedule a meeting
  meetborg meeting create https://meet.google.com/abc-defg-hij --title "Standup"

  # Send the bot in now
  meetborg meeting join <id>`,
		Aliases: []string{"meetings"},
	}

	cmd.AddCommand(newMeetingListCommand(deps))
	cmd.AddCommand(newMeetingGetCommand(deps))
	cmd.AddCommand(newMeetingCreateCommand(deps))
	cmd.AddCommand(newMeetingUpdateCommand(deps))
	cmd.AddCommand(newMeetingDeleteCommand(deps))
	cmd.AddCommand(newMeetingJoinCommand(deps))

	return cmd
}

func newMeetingListCommand(deps *MeetingCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		Long: `List meetings, optionally filtered by status.

Examples:
  # All meetings
  meetborg meeting list

  # Only scheduled ones
  meetborg meeting list --status scheduled

  # Page through a long history
  meetborg meeting list --skip 50 --limit 50

  # Output as JSON
  meetborg meeting list -o json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingList(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&meetingStatusFilter, "status", "s", "", "Filter by status: scheduled, in_progress, completed, cancelled, failed")
	cmd.Flags().IntVar(&meetingSkip, "skip", 0, "Pagination offset")
	cmd.Flags().IntVarP(&meetingLimit, "limit", "l", 0, "Maximum number of results")
	cmd.Flags().StringVarP(&meetingOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func newMeetingGetCommand(deps *MeetingCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one meeting",
		Long: `Fetch a single meeting with its join history.

Examples:
  meetborg meeting get 42
  meetborg meeting get 42 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingGet(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&meetingOutput, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func newMeetingCreateCommand(deps *MeetingCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <url>",
		Short: "Schedule a new meeting",
		Long: `Schedule a meeting from its URL.

The URL is classified first; creation is refused when no supported
platform can be detected from it. A title is required.

Examples:
  meetborg meeting create https://meet.google.com/abc-defg-hij --title "Standup"

  meetborg meeting create https://zoom.us/j/123456789 \
    --title "Sprint review" --at 2026-09-01T14:00:00Z --duration 45 \
    --purpose "Demo and retro"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingCreate(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&meetingTitle, "title", "t", "", "Meeting title (required)")
	cmd.Flags().StringVar(&meetingScheduledTime, "at", "", "Scheduled start time (RFC3339)")
	cmd.Flags().IntVarP(&meetingDuration, "duration", "d", 0, "Duration in minutes")
	cmd.Flags().StringVar(&meetingPurpose, "purpose", "", "Why the bot should attend")
	cmd.Flags().StringVarP(&meetingOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func newMeetingUpdateCommand(deps *MeetingCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id>",
		Short: "Update a meeting (not yet available)",
		Long: `Editing scheduled meetings is not offered yet.

Delete the meeting and create it again with the new details instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingUpdate(cmd.Context(), deps, args[0])
		},
	}
}

func newMeetingDeleteCommand(deps *MeetingCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meeting",
		Long: `Delete a meeting record.

Asks for confirmation unless --yes is given.

Examples:
  meetborg meeting delete 42
  meetborg meeting delete 42 --yes`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingDelete(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().BoolVarP(&meetingYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newMeetingJoinCommand(deps *MeetingCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Send the bot into a meeting now",
		Long: `Trigger an immediate bot join for a meeting.

The meeting must not be completed, cancelled, or failed.

Examples:
  meetborg meeting join 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingJoin(cmd.Context(), deps, args[0])
		},
	}
}

func newMeetingStore(deps *MeetingCommandDeps, cfg *config.CLIConfig) (*meetings.Store, error) {
	api, err := deps.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	return meetings.NewStore(api, &meetings.Options{Logger: newLogger(cfg)}), nil
}

func parseStatusFilter(raw string) (client.MeetingStatus, error) {
	if raw == "" {
		return "", nil
	}
	status := client.MeetingStatus(raw)
	if !status.IsKnown() {
		return "", fmt.Errorf("invalid status filter: %s", raw)
	}
	return status, nil
}

func runMeetingList(ctx context.Context, deps *MeetingCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, meetingOutput)
	if err != nil {
		return err
	}
	filter, err := parseStatusFilter(meetingStatusFilter)
	if err != nil {
		return err
	}

	store, err := newMeetingStore(deps, cfg)
	if err != nil {
		return err
	}

	list, err := store.List(ctx, filter, meetingSkip, meetingLimit)
	if err != nil {
		return friendlyError(err)
	}

	return outputMeetingList(format, list, store.Total())
}

func runMeetingGet(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, meetingOutput)
	if err != nil {
		return err
	}

	store, err := newMeetingStore(deps, cfg)
	if err != nil {
		return err
	}

	meeting, err := store.Get(ctx, id)
	if err != nil {
		return friendlyError(err)
	}

	switch format {
	case config.OutputFormatJSON:
		return outputJSON(meeting)
	case config.OutputFormatYAML:
		return outputYAML(meeting)
	default:
		outputMeetingDetail(meeting)
		return nil
	}
}

func runMeetingCreate(ctx context.Context, deps *MeetingCommandDeps, url string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, meetingOutput)
	if err != nil {
		return err
	}

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	draft := &meetings.Draft{
		URL:             url,
		Title:           meetingTitle,
		DurationMinutes: meetingDuration,
		Purpose:         meetingPurpose,
	}
	if meetingScheduledTime != "" {
		at, err := time.Parse(time.RFC3339, meetingScheduledTime)
		if err != nil {
			return fmt.Errorf("invalid --at time (want RFC3339): %w", err)
		}
		draft.ScheduledTime = &at
	}

	controller := detect.NewController(detect.NewClientClassifier(api),
		&detect.Options{QuietPeriod: cfg.DetectQuietPeriod, Logger: newLogger(cfg)})
	defer controller.Close()

	detection, err := controller.Resolve(ctx, url)
	if err != nil {
		return friendlyError(err)
	}
	if !detection.Valid {
		fmt.Println(detect.AdvisoryInvalidURL)
		return fmt.Errorf("cannot schedule: unsupported meeting URL")
	}
	fmt.Printf("Detected platform: %s\n", detection.Platform.DisplayName())

	store := meetings.NewStore(api, &meetings.Options{Logger: newLogger(cfg)})
	meeting, err := store.Create(ctx, draft, detection)
	if err != nil {
		return friendlyError(err)
	}

	switch format {
	case config.OutputFormatJSON:
		return outputJSON(meeting)
	case config.OutputFormatYAML:
		return outputYAML(meeting)
	default:
		fmt.Printf("Meeting %s scheduled.\n", meeting.ID)
		outputMeetingDetail(meeting)
		return nil
	}
}

func runMeetingUpdate(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	store, err := newMeetingStore(deps, cfg)
	if err != nil {
		return err
	}

	_, err = store.Update(ctx, id, nil)
	if errors.Is(err, meetings.ErrUpdateNotAvailable) {
		// A notice, not a failure.
		fmt.Println("Meeting update is not yet available.")
		fmt.Println("Delete the meeting and create it again with the new details.")
		return nil
	}
	return err
}

func runMeetingDelete(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	if !meetingYes && !confirm(os.Stdin, fmt.Sprintf("Delete meeting %s?", id)) {
		fmt.Println("Aborted.")
		return nil
	}

	store, err := newMeetingStore(deps, cfg)
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, id); err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Meeting %s deleted.\n", id)
	return nil
}

func runMeetingJoin(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	store, err := newMeetingStore(deps, cfg)
	if err != nil {
		return err
	}

	resp, err := store.TriggerJoin(ctx, id)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Println(resp.Message)
	fmt.Printf("  Meeting: %s\n", resp.MeetingID)
	fmt.Printf("  Platform: %s\n", resp.Platform.DisplayName())
	if resp.URL != "" {
		fmt.Printf("  URL: %s\n", resp.URL)
	}
	return nil
}

// outputMeetingList formats and outputs the meeting list.
func outputMeetingList(format config.OutputFormat, list []client.Meeting, total int) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSON(map[string]any{
			"meetings": list,
			"count":    len(list),
			"total":    total,
		})
	case config.OutputFormatYAML:
		return outputYAML(map[string]any{
			"meetings": list,
			"count":    len(list),
			"total":    total,
		})
	default:
		return outputMeetingListText(list, total)
	}
}

// outputMeetingListText formats the meeting list for terminal display.
func outputMeetingListText(list []client.Meeting, total int) error {
	if len(list) == 0 {
		fmt.Println("No meetings found.")
		return nil
	}

	fmt.Printf("Meetings (%d of %d):\n\n", len(list), total)
	fmt.Println("  ID        TITLE                               PLATFORM         STATUS       SCHEDULED")
	fmt.Println("  --        -----                               --------         ------       ---------")

	for _, m := range list {
		fmt.Printf("  %-8s  %-34s  %-15s  %-11s  %s\n",
			truncate(m.ID, 8),
			truncate(m.Title, 34),
			truncate(m.Platform.DisplayName(), 15),
			m.Status,
			formatTime(m.ScheduledTime))
	}
	return nil
}

// outputMeetingDetail prints a single meeting in full.
func outputMeetingDetail(m *client.Meeting) {
	fmt.Printf("ID:        %s\n", m.ID)
	fmt.Printf("Title:     %s\n", m.Title)
	fmt.Printf("URL:       %s\n", m.URL)
	fmt.Printf("Platform:  %s\n", m.Platform.DisplayName())
	if m.MeetingCode != nil {
		fmt.Printf("Code:      %s\n", *m.MeetingCode)
	}
	fmt.Printf("Status:    %s\n", m.Status)
	fmt.Printf("Scheduled: %s\n", formatTime(m.ScheduledTime))
	if m.DurationMinutes > 0 {
		fmt.Printf("Duration:  %d min\n", m.DurationMinutes)
	}
	if m.Purpose != nil && *m.Purpose != "" {
		fmt.Printf("Purpose:   %s\n", *m.Purpose)
	}
	if m.JoinAttemptedAt != nil {
		fmt.Printf("Last join attempt: %s", formatTime(m.JoinAttemptedAt))
		if m.JoinSuccessful != nil {
			fmt.Printf(" (%s)", *m.JoinSuccessful)
		}
		fmt.Println()
	}
}
