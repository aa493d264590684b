package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(_ *options) *cobra.Command {
	var lifetime time.Duration

	cmd := &cobra.Command{
		Use:   "token <learner-id>",
		Short: "Issue a development access token",
		Long: `Signs an access token for the learner with the configured JWT
secret. Production tokens come from the identity provider; this is for
local development and testing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			authCfg := cfg.Auth
			if lifetime > 0 {
				authCfg.TokenLifetimeMinutes = int(lifetime.Minutes())
			}
			if authCfg.TokenLifetimeMinutes <= 0 {
				return fmt.Errorf("token lifetime must be at least a minute")
			}

			svc, err := auth.NewJWTService(authCfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&lifetime, "ttl", 0, "token lifetime (default from auth.token_lifetime_minutes)")
	return cmd
}
