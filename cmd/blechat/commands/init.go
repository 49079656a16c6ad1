package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blechat/internal/app"
	"blechat/internal/domain"
)

func initCmd() *cobra.Command {
	var restore bool
	cmd := &cobra.Command{
		Use:   "init <alias>",
		Short: "Create the primary identity and store it securely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.Config.Store.Driver == app.DriverFile && appCtx.Config.Passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			ctx := cmd.Context()

			var (
				id  domain.PeerID
				err error
			)
			if restore {
				fmt.Fprintln(cmd.ErrOrStderr(), "Enter recovery phrase:")
				phrase, rerr := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if rerr != nil && strings.TrimSpace(phrase) == "" {
					return fmt.Errorf("read recovery phrase: %w", rerr)
				}
				id, err = appCtx.Identity.RestoreIdentity(ctx, args[0], phrase)
			} else {
				id, err = appCtx.Identity.CreateNewIdentity(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fp, err := appCtx.Identity.Fingerprint(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity created.\nPeer: %s\nFingerprint: %s\n", id, fp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&restore, "mnemonic", false, "restore from a recovery phrase read on stdin")
	return cmd
}
