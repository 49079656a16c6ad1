package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blechat/internal/crypto"
	"blechat/internal/domain"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the primary alias and fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok, err := appCtx.Identity.GetPrimaryIdentity(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrNoPrimaryIdentity
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alias: %s\nFingerprint: %s\n", p.Alias, crypto.Fingerprint(p.PublicKey[:]))
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Print the recovery phrase of the primary identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := appCtx.Identity.ExportMnemonic(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phrase)
			return nil
		},
	}
}
