package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

// announce: print the identity packet, or send it with --publish.
func announceCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Encode the primary identity as an announcement packet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !publish {
				b, err := appCtx.Broadcast.IdentityAnnouncement(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
				return nil
			}
			if err := appCtx.Connect(ctx); err != nil {
				return err
			}
			if err := appCtx.Broadcast.Announce(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "announced")
			return nil
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "broadcast over MQTT instead of printing hex")
	return cmd
}

// post <body>: print the message packet, or send it with --publish.
func postCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "post <body>",
		Short: "Encode a public message from the primary identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !publish {
				b, err := appCtx.Broadcast.PublicMessage(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
				return nil
			}
			if err := appCtx.Connect(ctx); err != nil {
				return err
			}
			if err := appCtx.Broadcast.Post(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "posted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "broadcast over MQTT instead of printing hex")
	return cmd
}
