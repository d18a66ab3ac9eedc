package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/spf13/cobra"
)

func newTokenCmd(flags *globalFlags) *cobra.Command {
	var (
		editor string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an editor token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cfg.EditorSecret == "" {
				return errors.New("no editor secret configured (set editor_secret or RBXBRIDGE_EDITOR_SECRET)")
			}
			m, err := crypto.NewJWTManager(cfg.EditorSecret)
			if err != nil {
				return err
			}
			token, err := m.CreateToken(editor, ttl)
			if err != nil {
				return fmt.Errorf("create token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&editor, "editor", "cli", "name of the editor integration")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry")
	return cmd
}
