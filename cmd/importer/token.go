package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/history-importer/internal/auth"
	"github.com/spec-kit/history-importer/internal/config"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

func tokenCmd() *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "token [operator]",
		Short: "Issue an operator token for the admin API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			granted, ok := auth.ParseScopes(scopes)
			if !ok {
				return errorutil.NewValidationError("unknown scope", map[string]any{"scopes": scopes})
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.Issuer)
			token, expiresAt, err := tokens.GenerateToken(args[0], granted...)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"token": token, "expires_at": expiresAt})
		},
	}

	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scopes to grant (default all)")
	return cmd
}
