package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blechat/internal/crypto"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store a received packet given as hex",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "identity <hex>",
			Short: "Ingest an identity announcement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := decodeHex(args[0])
				if err != nil {
					return err
				}
				ctx, cancel := ingestContext(cmd)
				defer cancel()
				p, err := appCtx.Ingest.ConsumeReceivedIdentity(ctx, b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Peer %s: %s (%s)\n", p.ID, p.Alias, crypto.Fingerprint(p.PublicKey[:]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "message <hex>",
			Short: "Ingest a public message",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := decodeHex(args[0])
				if err != nil {
					return err
				}
				ctx, cancel := ingestContext(cmd)
				defer cancel()
				m, err := appCtx.Ingest.ConsumeReceivedBroadcastMessage(ctx, b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Message %s from %s: %s\n", m.ID, m.Sender.Alias, m.Body)
				return nil
			},
		},
	)
	return cmd
}

func ingestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if d := appCtx.Config.Ingest.Timeout; d > 0 {
		return context.WithTimeout(cmd.Context(), d)
	}
	return context.WithCancel(cmd.Context())
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("packet is not valid hex: %w", err)
	}
	return b, nil
}
