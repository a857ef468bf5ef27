package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mavi-fit-game/internal/config"
)

// NewCreateAdminCmd bootstraps the first back-office account.
func NewCreateAdminCmd(configPath *string) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cfg))
			if cfg.Postgres.URL == "" {
				return errors.New("create-admin needs postgres; accounts of the in-memory store do not survive the process")
			}

			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			user, err := rt.users.CreateAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			slog.Info("admin created", slog.String("user_id", user.ID), slog.String("email", user.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin e-mail")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	return cmd
}
