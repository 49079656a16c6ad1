package commands

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// listen joins the broadcast channel, announces the primary identity and
// ingests packets until interrupted.
func listenCmd() *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Join the MQTT broadcast channel and ingest until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := appCtx.Connect(ctx); err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			if addr := appCtx.Config.Metrics.Addr; addr != "" {
				g.Go(func() error { return appCtx.Metrics.Serve(ctx, addr) })
			}
			g.Go(func() error { return announceLoop(ctx, every) })

			log.Info("listening, press Ctrl-C to stop")
			return g.Wait()
		},
	}
	cmd.Flags().DurationVar(&every, "announce-every", time.Minute, "re-announce interval (0 announces once)")
	return cmd
}

func announceLoop(ctx context.Context, every time.Duration) error {
	announce := func() {
		if err := appCtx.Broadcast.Announce(ctx); err != nil {
			log.WithError(err).Warn("announce failed")
		}
	}
	announce()
	if every <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			announce()
		}
	}
}
