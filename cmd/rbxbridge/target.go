package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/wire"
	"github.com/spf13/cobra"
)

func newTargetCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Choose where queued scripts run",
	}
	cmd.AddCommand(newTargetPlaceCmd(flags), newTargetContextCmd(flags))
	return cmd
}

func newTargetPlaceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "place <id|next|none>",
		Short: "Target a place, cycle to the next one, or clear the target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client(cmd)
			if err != nil {
				return err
			}

			var state wire.State
			switch arg := strings.ToLower(args[0]); arg {
			case "next":
				state, err = c.NextTargetPlace(cmd.Context())
			case "none":
				state, err = c.SetTargetPlace(cmd.Context(), nil)
			default:
				id, perr := strconv.ParseInt(arg, 10, 64)
				if perr != nil {
					return fmt.Errorf("invalid place id %q", args[0])
				}
				state, err = c.SetTargetPlace(cmd.Context(), &id)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTarget(state))
			return err
		},
	}
}

func newTargetContextCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "context <Edit|Server|Client|next>",
		Short: "Select the execution context, or toggle Server and Client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state wire.State
			if strings.EqualFold(args[0], "next") {
				c, err := flags.client(cmd)
				if err != nil {
					return err
				}
				if state, err = c.NextTargetContext(cmd.Context()); err != nil {
					return err
				}
			} else {
				ctx, ok := bridge.ParseContext(args[0])
				if !ok {
					return fmt.Errorf("unknown context %q", args[0])
				}
				c, err := flags.client(cmd)
				if err != nil {
					return err
				}
				if state, err = c.SetTargetContext(cmd.Context(), ctx.String()); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTarget(state))
			return err
		},
	}
}
