package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VyankateshKulkarni13/meetborg/client"
	"github.com/VyankateshKulkarni13/meetborg/config"
	"github.com/VyankateshKulkarni13/meetborg/credentials"
)

// Auth command flags.
var (
	authUsername string
	authEmail    string
	authPassword string
	authOutput   string
)

// AuthCommandDeps holds dependencies for auth commands.
type AuthCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewClient  func(cfg *config.CLIConfig) (*client.Client, error)
	NewStore   func() (*credentials.Store, error)
}

// DefaultAuthDeps returns default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		LoadConfig: config.LoadConfig,
		NewClient:  newAPIClient,
		NewStore:   credentials.NewStore,
	}
}

// NewAuthCommand creates the root auth command with all subcommands.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long: `Manage authentication with the meetborg backend.

The auth commands register an account, log in and out, and inspect the
current session. The bearer token returned by login is stored encrypted
in ~/.meetborg/credentials.yaml.

The MEETBORG_TOKEN environment variable takes precedence over stored
credentials.`,
	}

	cmd.AddCommand(newAuthRegisterCommand(deps))
	cmd.AddCommand(newAuthLoginCommand(deps))
	cmd.AddCommand(newAuthLogoutCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	cmd.AddCommand(newAuthWhoamiCommand(deps))

	return cmd
}

func newAuthRegisterCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long: `Register a new account on the meetborg backend.

The first account registered on a fresh backend becomes the
administrator. The command reports whether that applies before creating
the account.

Examples:
  # Interactive registration (prompts for password)
  meetborg auth register --username alice --email alice@example.com

  # Non-interactive (password from flag, avoid in shared shells)
  meetborg auth register --username alice --password s3cret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthRegister(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&authUsername, "username", "u", "", "Account username (required)")
	cmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func newAuthLoginCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Log in to the meetborg backend and store the bearer token.

The token is stored encrypted at rest and used by all authenticated
commands until it expires or 'meetborg auth logout' removes it.

Examples:
  meetborg auth login --username alice
  meetborg auth login -u alice -p s3cret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&authUsername, "username", "u", "", "Account username (required)")
	cmd.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func newAuthLogoutCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove the stored session token.

The MEETBORG_TOKEN environment variable, if set, is not affected.

Examples:
  meetborg auth logout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(deps)
		},
	}
}

func newAuthStatusCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Show the active credential source, the masked token, and its
expiry.

Examples:
  meetborg auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(deps)
		},
	}
}

func newAuthWhoamiCommand(deps *AuthCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		Long: `Fetch the profile of the account behind the active token.

Examples:
  meetborg auth whoami
  meetborg auth whoami -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthWhoami(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&authOutput, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func runAuthRegister(ctx context.Context, deps *AuthCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	password := authPassword
	if password == "" {
		password, err = readSecret("Password: ")
		if err != nil {
			return err
		}
		confirmed, err := readSecret("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirmed {
			return fmt.Errorf("passwords do not match")
		}
	}

	first, err := api.CheckFirstUser(ctx)
	if err == nil && first.IsFirstUser {
		fmt.Println("No accounts exist yet: this account will be the administrator.")
	}

	user, err := api.Register(ctx, &client.RegisterRequest{
		Username: authUsername,
		Email:    authEmail,
		Password: password,
	})
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Account %q created.\n", user.Username)
	if user.IsSuperuser {
		fmt.Println("This account has administrator privileges.")
	}
	fmt.Println("Run 'meetborg auth login' to start a session.")
	return nil
}

func runAuthLogin(ctx context.Context, deps *AuthCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	password := authPassword
	if password == "" {
		password, err = readSecret("Password: ")
		if err != nil {
			return err
		}
	}

	token, err := api.Login(ctx, &client.LoginRequest{
		Username: authUsername,
		Password: password,
	})
	if err != nil {
		return friendlyError(err)
	}

	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}
	if err := store.Save(&credentials.Credentials{
		Token:     token.AccessToken,
		ServerURL: cfg.APIBaseURL,
		Subject:   authUsername,
	}); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Println("Login successful!")
	fmt.Printf("  Token: %s\n", credentials.MaskToken(token.AccessToken))
	fmt.Printf("  Server: %s\n", cfg.APIBaseURL)

	credPath, _ := credentials.CredentialsPath()
	fmt.Printf("\nCredentials stored in: %s\n", credPath)
	return nil
}

func runAuthLogout(deps *AuthCommandDeps) error {
	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	if !store.Exists() {
		fmt.Println("No stored credentials found.")
		return nil
	}

	if err := store.Delete(); err != nil {
		return fmt.Errorf("removing credentials: %w", err)
	}

	fmt.Println("Logged out successfully.")
	if os.Getenv("MEETBORG_TOKEN") != "" {
		fmt.Println("\nNote: MEETBORG_TOKEN environment variable is still set.")
		fmt.Println("Unset it with: unset MEETBORG_TOKEN")
	}
	return nil
}

func runAuthStatus(deps *AuthCommandDeps) error {
	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	fmt.Println("Authentication Status")
	fmt.Println("=====================")
	fmt.Println()

	envToken := os.Getenv("MEETBORG_TOKEN")
	if envToken != "" {
		fmt.Printf("MEETBORG_TOKEN: %s (active, takes precedence)\n", credentials.MaskToken(envToken))
		fmt.Println()
	}

	creds, err := store.Load()
	if err != nil {
		if err == credentials.ErrNoCredentials {
			fmt.Println("Stored Credentials: None")
			if envToken == "" {
				fmt.Println("\nNot authenticated. Run 'meetborg auth login' to authenticate.")
			}
			return nil
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Println("Stored Credentials:")
	fmt.Printf("  Token: %s\n", credentials.MaskToken(creds.Token))
	if creds.Subject != "" {
		fmt.Printf("  Account: %s\n", creds.Subject)
	}
	if creds.ServerURL != "" {
		fmt.Printf("  Server: %s\n", creds.ServerURL)
	}
	if !creds.ExpiresAt.IsZero() {
		fmt.Printf("  Expires: %s (%s)\n",
			creds.ExpiresAt.Format(time.RFC3339),
			credentials.FormatExpiry(creds.ExpiresAt))
		if time.Now().After(creds.ExpiresAt) {
			fmt.Println("\nWarning: stored token has expired. Run 'meetborg auth login'.")
		}
	}
	fmt.Printf("  Last Updated: %s\n", creds.LastUpdated.Format(time.RFC3339))
	return nil
}

func runAuthWhoami(ctx context.Context, deps *AuthCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	format, err := resolveOutputFormat(cfg, authOutput)
	if err != nil {
		return err
	}

	api, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	user, err := api.GetProfile(ctx)
	if err != nil {
		return friendlyError(err)
	}

	switch format {
	case config.OutputFormatJSON:
		return outputJSON(user)
	case config.OutputFormatYAML:
		return outputYAML(user)
	default:
		fmt.Printf("Username: %s\n", user.Username)
		if user.Email != "" {
			fmt.Printf("Email: %s\n", user.Email)
		}
		fmt.Printf("Active: %t\n", user.IsActive)
		if user.IsSuperuser {
			fmt.Println("Role: administrator")
		}
		fmt.Printf("Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
		return nil
	}
}
