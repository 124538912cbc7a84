package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clr-site/internal/app"
	"clr-site/internal/core"
	"clr-site/internal/features/admin/handlers"
	"clr-site/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
	batchLimit    int
)

var rootCmd = &cobra.Command{
	Use:   "clradmin",
	Short: "Operator tasks for the Chef Life Radio site",
	Long: `clradmin runs maintenance tasks against the site's store: schema
migrations, podcast feed imports, admin accounts and the email queue.
Configuration is read from the same CLR_* environment as the server.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *core.Migrator) error {
			if err := m.Up(ctx); err != nil {
				return err
			}
			return printStatus(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *core.Migrator) error {
			if err := m.Down(ctx); err != nil {
				return err
			}
			return printStatus(cmd, m)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(_ context.Context, m *core.Migrator) error {
			return printStatus(cmd, m)
		})
	},
}

var syncFeedCmd = &cobra.Command{
	Use:   "sync-feed",
	Short: "Import new episodes from the podcast feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, site *app.App) error {
			result, err := site.Content.SyncFeed(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("CLR_AUTH_ADMIN_PASSWORD")
		}
		if adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("--email and a password (--password or CLR_AUTH_ADMIN_PASSWORD) are required")
		}

		return withApp(cmd, func(ctx context.Context, site *app.App) error {
			user, err := site.Auth.CreateUser(ctx, adminName, adminEmail, adminPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %d <%s>\n", user.ID, user.Email)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print content, subscriber and email counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, site *app.App) error {
			emailStats, err := site.Queue.Stats(ctx)
			if err != nil {
				return err
			}
			subscribers, err := site.Newsletter.Service().ActiveCount(ctx)
			if err != nil {
				return err
			}
			messages, err := site.Contact.Service().NewCount(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"content":      site.Content.Stats(ctx),
				"email":        emailStats,
				"subscribers":  subscribers,
				"new_messages": messages,
			})
		})
	},
}

var processEmailCmd = &cobra.Command{
	Use:   "process-email-queue",
	Short: "Send pending queued emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, site *app.App) error {
			result, err := site.Queue.ProcessPending(ctx, batchLimit)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Site Admin", "Admin display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	processEmailCmd.Flags().IntVar(&batchLimit, "limit", handlers.DefaultBatch, "Maximum emails to send")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd, syncFeedCmd, createAdminCmd, statsCmd, processEmailCmd)
}

func loadConfig() (*core.Config, *core.Logger, error) {
	godotenv.Load()

	config, err := core.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return config, core.NewLogger(), nil
}

// withMigrator runs fn against the raw database, without migrating it first
func withMigrator(cmd *cobra.Command, fn func(context.Context, *core.Migrator) error) error {
	config, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := store.OpenDatabase(ctx, config.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := store.NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return fn(ctx, migrator)
}

func withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	config, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	site, err := app.New(ctx, config, logger)
	if err != nil {
		return err
	}
	defer site.Close()

	return fn(ctx, site)
}

func printStatus(cmd *cobra.Command, m *core.Migrator) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty: %t)\n", status.Version, status.Dirty)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
