package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blechat/internal/app"
)

var (
	cfgFile string
	verbose bool
	v       *viper.Viper
	appCtx  *app.App
)

// Execute runs the CLI until it completes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	v = app.NewViper()
	root := &cobra.Command{
		Use:          "blechat",
		Short:        "Nearby public broadcast chat",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			if err := app.ConfigureLogging(cfg.Log.Level, verbose); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}
			appCtx, err = app.Build(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.blechat/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.String("home", "", "data dir (default ~/.blechat)")
	pf.StringP("passphrase", "p", "", "passphrase protecting the primary key")
	pf.String("store", app.DriverFile, "storage driver: file or postgres")
	pf.String("dsn", "", "postgres DSN when --store=postgres")
	pf.String("broker", "", "MQTT broker URL (e.g. tcp://127.0.0.1:1883)")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address")
	pf.String("log-level", "info", "log level")

	for key, flag := range map[string]string{
		"home":         "home",
		"passphrase":   "passphrase",
		"store.driver": "store",
		"store.dsn":    "dsn",
		"mqtt.broker":  "broker",
		"metrics.addr": "metrics-addr",
		"log.level":    "log-level",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		initCmd(), whoamiCmd(), backupCmd(),
		announceCmd(), postCmd(), ingestCmd(),
		peersCmd(), messagesCmd(), purgeCmd(),
		listenCmd(),
	)
	return root
}
