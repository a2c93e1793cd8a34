package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chiller-selector/internal/auth"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		roles   []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed token for the write API",
		Long: `Signs an RS256 token with JWT_PRIVATE_KEY_PATH. The server checks it against
JWT_PUBLIC_KEY_PATH when AUTH_ENABLED is true. The token goes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr := root.load()
			defer logr.Sync()

			mgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, auth.DefaultIssuer)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.AccessTokenTTL
			}
			tok, exp, err := mgr.IssueToken(subject, ttl, roles)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			info(cmd.ErrOrStderr(), "expires %s", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "who the token is for (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime (defaults to ACCESS_TOKEN_MINUTES)")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleAdmin}, "roles to grant")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
