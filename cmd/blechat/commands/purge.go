package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"blechat/internal/domain"
)

// purge removes peers (and their messages) and individual messages.
func purgeCmd() *cobra.Command {
	var peerIDs, messageIDs []int64
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete peers and messages by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(peerIDs) == 0 && len(messageIDs) == 0 {
				return fmt.Errorf("nothing to purge: use --peer or --message")
			}
			peers := make([]domain.PeerID, len(peerIDs))
			for i, id := range peerIDs {
				peers[i] = domain.PeerID(id)
			}
			msgs := make([]domain.MessageID, len(messageIDs))
			for i, id := range messageIDs {
				msgs[i] = domain.MessageID(id)
			}

			var np, nm int
			err := appCtx.Repo.WithinTx(cmd.Context(), func(ctx context.Context, tx domain.Repository) error {
				var err error
				if nm, err = tx.DeleteMessages(ctx, msgs...); err != nil {
					return err
				}
				np, err = tx.DeletePeers(ctx, peers...)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d peers and %d messages.\n", np, nm)
			return nil
		},
	}
	cmd.Flags().Int64SliceVar(&peerIDs, "peer", nil, "peer id to delete, with its messages (repeatable)")
	cmd.Flags().Int64SliceVar(&messageIDs, "message", nil, "message id to delete (repeatable)")
	return cmd
}
