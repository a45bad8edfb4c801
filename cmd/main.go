package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hospital-records/cmd/bootstrap"
	"hospital-records/internal/infrastructure/filestore"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hospital",
		Short:         "Hospital records manager: accounts, appointments, pharmacy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run()
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every data file and report record counts and dropped lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			loadErr := app.Store.LoadAll()
			out := cmd.OutOrStdout()
			for _, repo := range app.Store.All() {
				stats := repo.LastLoad()
				fmt.Fprintf(out, "%-14s %-40s records=%d dropped=%d\n", repo.EntityName(), repo.FilePath(), stats.Records, stats.Dropped)
			}
			return loadErr
		},
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <entity>",
		Short: "Replace an entity's data file with its newest backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			repo := app.Store.Find(args[0])
			if repo == nil {
				return fmt.Errorf("unknown entity %q", args[0])
			}

			backup, err := app.Files.RestoreFromBackup(repo.FilePath())
			if err != nil {
				if errors.Is(err, filestore.ErrNoBackup) {
					return fmt.Errorf("no backup of %s in %s", repo.FilePath(), app.Files.BackupDir())
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", repo.FilePath(), backup)
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			account, err := app.Auth.CreateAdmin(context.Background(), username, password)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", account.Username)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Admin username")
	cmd.Flags().String("password", "", "Admin password")
	return cmd
}
