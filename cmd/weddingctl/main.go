package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wedding-site/internal/app"
	"wedding-site/internal/config"
	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
)

var (
	seedFile string

	userEmail    string
	userPassword string
	userName     string

	exportOutput string

	limitScope      string
	limitIdentifier string
	limitHit        bool
)

var rootCmd = &cobra.Command{
	Use:           "weddingctl",
	Short:         "Wedding site administration tool",
	Long:          "Administrative tool for seeding the wedding site, managing back-office users, exporting RSVPs and inspecting rate limits",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and load default settings and FAQs",
	RunE:  runSeed,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage back-office users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user or reset the password of an existing one",
	RunE:  createUser,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List back-office users",
	RunE:  listUsers,
}

var rsvpCmd = &cobra.Command{
	Use:   "rsvp",
	Short: "Manage RSVPs",
}

var rsvpExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every RSVP as CSV",
	RunE:  exportRSVPs,
}

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Inspect the rate limiter",
}

var rateLimitCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the current window of an identifier in a scope",
	RunE:  checkRateLimit,
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the counter of an identifier in a scope",
	RunE:  resetRateLimit,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed YAML file (defaults to SEED_FILE or the built-in data)")

	userCreateCmd.Flags().StringVarP(&userEmail, "email", "e", "", "Email (required)")
	userCreateCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Password, at least 8 characters (required)")
	userCreateCmd.Flags().StringVarP(&userName, "name", "n", "Administrador", "Display name")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")

	rsvpExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (defaults to stdout)")

	for _, cmd := range []*cobra.Command{rateLimitCheckCmd, rateLimitResetCmd} {
		cmd.Flags().StringVarP(&limitScope, "scope", "s", string(domain.RSVPScope), "Scope: rsvp or guestbook")
		cmd.Flags().StringVarP(&limitIdentifier, "identifier", "i", "", "Client identifier, usually an IP (required)")
		cmd.MarkFlagRequired("identifier")
	}
	rateLimitCheckCmd.Flags().BoolVar(&limitHit, "hit", false, "Count a request instead of only reading the window")

	userCmd.AddCommand(userCreateCmd, userListCmd)
	rsvpCmd.AddCommand(rsvpExportCmd)
	rateLimitCmd.AddCommand(rateLimitCheckCmd, rateLimitResetCmd)
	rootCmd.AddCommand(seedCmd, userCmd, rsvpCmd, rateLimitCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.NewConfigLoader().LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// stdout may carry the CSV export, so logs go to stderr
	log := logger.NewLoggerWithOutput(cfg.LogLevel, "text", os.Stderr)
	return app.New(ctx, cfg, log)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if seedFile != "" {
		a.Config.SeedFile = seedFile
	}

	result, err := a.Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	fmt.Printf("Seed completed\n")
	if result.AdminEmail != "" {
		state := "already existed, password unchanged"
		if result.AdminCreated {
			state = "created"
		}
		fmt.Printf("  Admin %s: %s\n", result.AdminEmail, state)
	}
	fmt.Printf("  Settings: %d\n", result.Settings)
	fmt.Printf("  FAQs: %d\n", result.FAQs)
	return nil
}

func createUser(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.Services.Auth.CreateUser(ctx, userEmail, userPassword, userName)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("\nUser saved successfully!\n")
	fmt.Printf("User ID: %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role: %s\n", user.Role)
	return nil
}

func listUsers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.Repositories.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	fmt.Printf("\nTotal users: %d\n\n", len(users))
	fmt.Printf("%-36s %-30s %-8s %s\n", "ID", "Email", "Role", "Created")
	fmt.Println("--------------------------------------------------------------------------------------------")
	for _, user := range users {
		fmt.Printf("%-36s %-30s %-8s %s\n",
			user.ID,
			user.Email,
			user.Role,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

func exportRSVPs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := a.Services.RSVPs.ExportCSV(ctx, out); err != nil {
		return fmt.Errorf("failed to export rsvps: %w", err)
	}

	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "RSVPs exported to %s\n", exportOutput)
	}
	return nil
}

func checkRateLimit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := domain.RateLimitScope(limitScope)
	limiter := a.Services.RateLimiter
	rule, ok := limiter.Rule(scope)
	if !ok {
		return fmt.Errorf("unknown scope %q", limitScope)
	}

	fmt.Printf("Storage: %s\n", a.Config.StorageType)
	fmt.Printf("Rule: %d requests per %s\n", rule.Limit, rule.Window)

	if limitHit {
		result, err := limiter.Check(ctx, scope, limitIdentifier)
		if err != nil {
			return fmt.Errorf("failed to check rate limit: %w", err)
		}
		fmt.Printf("Allowed: %t\n", result.Allowed)
		fmt.Printf("Remaining: %d\n", result.Remaining)
		fmt.Printf("Resets in: %s\n", time.Until(result.ResetAt).Round(time.Second))
		return nil
	}

	record, err := limiter.Status(ctx, scope, limitIdentifier)
	if err != nil {
		return fmt.Errorf("failed to read rate limit: %w", err)
	}
	if record == nil {
		fmt.Printf("No active window for %s\n", limitIdentifier)
		return nil
	}

	remaining := rule.Limit - record.Count
	if remaining < 0 {
		remaining = 0
	}
	fmt.Printf("Count: %d\n", record.Count)
	fmt.Printf("Remaining: %d\n", remaining)
	fmt.Printf("Resets in: %s\n", time.Until(record.WindowResetAt).Round(time.Second))
	return nil
}

func resetRateLimit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := domain.RateLimitScope(limitScope)
	if _, ok := a.Services.RateLimiter.Rule(scope); !ok {
		return fmt.Errorf("unknown scope %q", limitScope)
	}
	if err := a.Services.RateLimiter.Reset(ctx, scope, limitIdentifier); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}

	fmt.Printf("Counter cleared for %s in scope %s\n", limitIdentifier, scope)
	return nil
}
