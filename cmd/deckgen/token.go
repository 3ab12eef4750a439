package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		user  string
		grade int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := uuid.New()
			if user != "" {
				id, err := uuid.Parse(user)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				userID = id
			}

			cfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			jwt, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}

			tok, err := jwt.GenerateToken(cmd.Context(), userID, grade)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID (random when empty)")
	cmd.Flags().IntVar(&grade, "grade", 0, "grade claim, 0 for unscoped")
	return cmd
}
