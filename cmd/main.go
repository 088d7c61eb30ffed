package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/admin/tg-bots/dose-bot/internal/app"
)

const appName = "dose_bot"

var rootCmd = &cobra.Command{
	Use:           "dose-bot",
	Short:         "Telegram bot for keeping a personal dose log",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (webhook or long polling)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply Postgres migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.NewEnvConfig(appName)
		if err != nil {
			return err
		}
		return app.New(appName, cfg).Migrate(cmd.Context())
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Print the command catalog as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := app.Catalog()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	},
}

func serve(ctx context.Context) error {
	cfg, err := app.NewEnvConfig(appName)
	if err != nil {
		return err
	}
	return app.New(appName, cfg).Run(ctx)
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, commandsCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
