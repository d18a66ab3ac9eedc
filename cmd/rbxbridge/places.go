package main

import (
	"encoding/json"
	"fmt"

	"github.com/rbxbridge/rbxbridge/internal/wire"
	"github.com/spf13/cobra"
)

func newPlacesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "places",
		Short: "List registered places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := flags.client(cmd)
			if err != nil {
				return err
			}
			state, err := c.State(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, state.Places)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderPlaces(state))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON bool
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current target and queued jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := flags.client(cmd)
			if err != nil {
				return err
			}
			if follow {
				return c.Events(cmd.Context(), func(ev wire.Event) {
					fmt.Fprintln(cmd.OutOrStdout(), renderEvent(ev))
				})
			}

			state, err := c.State(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, state)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStatus(state))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream state changes until interrupted")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
