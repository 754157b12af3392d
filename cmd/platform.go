package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/config"
)

// Platform command flags.
var (
	platformOutput string
	platformEmail  string
	platformSecret string
	platformYes    bool
)

// PlatformCommandDeps holds dependencies for platform commands.
type PlatformCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewClient  func(cfg *config.CLIConfig) (*client.Client, error)
}

// DefaultPlatformDeps returns default dependencies for production use.
func DefaultPlatformDeps() *PlatformCommandDeps {
	return &PlatformCommandDeps{
		LoadConfig: config.LoadConfig,
		NewClient:  newAPIClient,
	}
}

// NewPlatformCommand creates the root platform command with all subcommands.
func NewPlatformCommand(deps *PlatformCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultPlatformDeps()
	}

	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Manage platform credentials for the bot",
		Long: `Manage the accounts the bot uses to join meetings.

Each platform credential pairs a platform (Google Meet, Zoom, ...) with
the bot account's email and password. Secrets are write-only: the
backend never returns them.

Examples:
  meetborg platform list
  meetborg platform add google_meet --email bot@example.com
  meetborg platform test <id>`,
		Aliases: []string{"platforms"},
	}

	cmd.AddCommand(newPlatformListCommand(deps))
	cmd.AddCommand(newPlatformAddCommand(deps))
	cmd.AddCommand(newPlatformRemoveCommand(deps))
	cmd.AddCommand(newPlatformTestCommand(deps))

	return cmd
}

func newPlatformListCommand(deps *PlatformCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured platform credentials",
		Long: `List the platform credentials and their connection status.

Examples:
  meetborg platform list
  meetborg platform list -o json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatformList(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&platformOutput, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func newPlatformAddCommand(deps *PlatformCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <platform>",
		Short: "Add a platform credential",
		Long: `Add a bot account for a platform.

The password is prompted with echo disabled unless --password is given.

Examples:
  meetborg platform add google_meet --email bot@example.com
  meetborg platform add zoom --email bot@example.com --password s3cret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatformAdd(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&platformEmail, "email", "e", "", "Bot account email (required)")
	cmd.Flags().StringVarP(&platformSecret, "password", "p", "", "Bot account password (prompted when omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newPlatformRemoveCommand(deps *PlatformCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a platform credential",
		Long: `Remove a platform credential.

Asks for confirmation unless --yes is given.

Examples:
  meetborg platform remove 7 --yes`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatformRemove(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().BoolVarP(&platformYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newPlatformTestCommand(deps *PlatformCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Test a platform credential",
		Long: `Ask the backend to verify the credential can sign in.

Updates the stored connection status and last-tested timestamp.

Examples:
  meetborg platform test 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatformTest(cmd.Context(), deps, args[0])
		},
	}
}

func runPlatformList(ctx context.Context, deps *PlatformCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, platformOutput)
	if err != nil {
		return err
	}

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	resp, err := api.ListPlatformCredentials(ctx)
	if err != nil {
		return friendlyError(err)
	}

	switch format {
	case config.OutputFormatJSON:
		return outputJSON(resp)
	case config.OutputFormatYAML:
		return outputYAML(resp)
	default:
		return outputPlatformListText(resp.Platforms)
	}
}

func outputPlatformListText(creds []client.PlatformCredential) error {
	if len(creds) == 0 {
		fmt.Println("No platform credentials configured.")
		fmt.Println("Add one with 'meetborg platform add <platform> --email <email>'.")
		return nil
	}

	fmt.Printf("Platform credentials (%d):\n\n", len(creds))
	fmt.Println("  ID        PLATFORM         EMAIL                           STATUS    LAST TESTED")
	fmt.Println("  --        --------         -----                           ------    -----------")

	for _, c := range creds {
		fmt.Printf("  %-8s  %-15s  %-30s  %-8s  %s\n",
			truncate(c.ID, 8),
			truncate(c.PlatformType.DisplayName(), 15),
			truncate(c.Email, 30),
			c.Status,
			formatTime(c.LastTestedAt))
	}
	return nil
}

func runPlatformAdd(ctx context.Context, deps *PlatformCommandDeps, platform string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	platformType := client.Platform(platform)
	if !platformType.IsCredentialPlatform() {
		return fmt.Errorf("platform %s does not support bot credentials (supported: %s, %s, %s)",
			platform, client.PlatformGoogleMeet, client.PlatformZoom, client.PlatformMicrosoftTeams)
	}

	secret := platformSecret
	if secret == "" {
		secret, err = readSecret("Bot account password: ")
		if err != nil {
			return err
		}
		if secret == "" {
			return fmt.Errorf("password is required")
		}
	}

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	cred, err := api.CreatePlatformCredential(ctx, &client.PlatformCredentialCreateRequest{
		PlatformType: platformType,
		Email:        platformEmail,
		Password:     secret,
	})
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Credential %s added for %s (%s).\n", cred.ID, cred.PlatformType.DisplayName(), cred.Email)
	fmt.Println("Run 'meetborg platform test' to verify it can sign in.")
	return nil
}

func runPlatformRemove(ctx context.Context, deps *PlatformCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	if !platformYes && !confirm(os.Stdin, fmt.Sprintf("Remove platform credential %s?", id)) {
		fmt.Println("Aborted.")
		return nil
	}

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	if err := api.DeletePlatformCredential(ctx, id); err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Platform credential %s removed.\n", id)
	return nil
}

func runPlatformTest(ctx context.Context, deps *PlatformCommandDeps, id string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	fmt.Println("Testing connection, this can take a moment...")
	result, err := api.TestPlatformCredential(ctx, id)
	if err != nil {
		return friendlyError(err)
	}

	if result.Success {
		fmt.Printf("Connection OK (status: %s)\n", result.Status)
	} else {
		fmt.Printf("Connection failed (status: %s)\n", result.Status)
	}
	if result.Message != "" {
		fmt.Printf("  %s\n", result.Message)
	}
	return nil
}
