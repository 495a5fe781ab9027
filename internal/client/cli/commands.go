package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credvault/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it starts the
// REPL.
func NewRootCmd() *cobra.Command {
	var (
		configFile string
		serverURL  string
		timeout    int
		app        *App
	)

	cmd := &cobra.Command{
		Use:          "credvault-cli",
		Short:        "Command-line client for the credvault auth API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = serverURL
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RequestTimeout = time.Duration(timeout) * time.Second
			}

			app, err = NewApp(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Root(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.PersistentFlags().StringVarP(&serverURL, "server", "a", "", "server base URL, e.g. http://127.0.0.1:8080")
	cmd.PersistentFlags().IntVarP(&timeout, "timeout", "t", 0, "request timeout (in seconds)")

	sub := func(use, short string, run func(*App, context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(app, cmd.Context())
			},
		}
	}

	cmd.AddCommand(sub("register", "Create an account", (*App).Register))
	cmd.AddCommand(sub("login", "Log in to verify credentials", (*App).Login))
	cmd.AddCommand(sub("forgot-password", "Request a password reset email", (*App).ForgotPassword))
	cmd.AddCommand(sub("reset-password", "Set a new password using a reset token", (*App).ResetPassword))

	return cmd
}
