package commands

import (
	"io"
	"time"

	"github.com/kataras/tablewriter"
	"github.com/lensesio/tableprinter"
	"github.com/spf13/cobra"

	"blechat/internal/crypto"
)

type peerRow struct {
	ID          int64  `header:"id"`
	Alias       string `header:"alias"`
	Fingerprint string `header:"fingerprint"`
	LastSeen    string `header:"last seen"`
	Primary     string `header:"me"`
}

type messageRow struct {
	ID       int64  `header:"id"`
	Peer     int64  `header:"peer"`
	From     string `header:"from"`
	Authored string `header:"authored"`
	Body     string `header:"body"`
}

func newPrinter(w io.Writer) *tableprinter.Printer {
	printer := tableprinter.New(w)
	printer.BorderTop, printer.BorderBottom, printer.BorderLeft, printer.BorderRight = true, true, true, true
	printer.CenterSeparator = "│"
	printer.ColumnSeparator = "│"
	printer.RowSeparator = "─"
	printer.HeaderBgColor = tablewriter.BgBlackColor
	printer.HeaderFgColor = tablewriter.FgGreenColor
	return printer
}

func ago(t time.Time) string {
	return time.Since(t).Truncate(time.Second).String() + " ago"
}

func peersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "List known peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := appCtx.Repo.ListPeers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]peerRow, 0, len(peers))
			for _, p := range peers {
				row := peerRow{
					ID:          int64(p.ID),
					Alias:       p.Alias,
					Fingerprint: crypto.Fingerprint(p.PublicKey[:]).String(),
					LastSeen:    ago(p.DateSeen),
				}
				if p.IsPrimary() {
					row.Primary = "*"
				}
				rows = append(rows, row)
			}
			newPrinter(cmd.OutOrStdout()).Print(rows)
			return nil
		},
	}
}

func messagesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List stored messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := appCtx.Repo.ListMessages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			rows := make([]messageRow, 0, len(msgs))
			for _, m := range msgs {
				rows = append(rows, messageRow{
					ID:       int64(m.ID),
					Peer:     int64(m.PeerID),
					From:     m.Sender.Alias,
					Authored: m.AuthoredDate.Local().Format(time.DateTime),
					Body:     m.Body,
				})
			}
			newPrinter(cmd.OutOrStdout()).Print(rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum messages to show (0 for all)")
	return cmd
}
