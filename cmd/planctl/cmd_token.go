package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bbarathsrinivasan/ACMHack/internal/service"
	"github.com/bbarathsrinivasan/ACMHack/pkg/config"
)

func newTokenCmd() *cobra.Command {
	var userID, email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, expires, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration).Issue(userID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Subject user id")
	cmd.Flags().StringVar(&email, "email", "", "Optional email claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
