package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"blechat/internal/domain"
	"blechat/internal/metrics"
	"blechat/internal/platform/ratelimiter"
	broadcastsvc "blechat/internal/services/broadcast"
	identitysvc "blechat/internal/services/identity"
	ingestsvc "blechat/internal/services/ingest"
	"blechat/internal/store"
	"blechat/internal/store/sqlstore"
	"blechat/internal/transport/mqtt"
)

// limiterIdleTTL is how long an idle sender keeps its rate-limit bucket.
const limiterIdleTTL = 10 * time.Minute

// Build constructs the dependency graph from cfg.
func Build(ctx context.Context, cfg Config) (*App, error) {
	log := logrus.StandardLogger()
	a := &App{Config: cfg, Metrics: metrics.New()}

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Repo = repo
	if closeRepo != nil {
		a.closers = append(a.closers, closeRepo)
	}

	a.Identity = identitysvc.New(repo, identitysvc.WithLogger(log))
	a.Ingest = ingestsvc.New(repo,
		ingestsvc.WithLogger(log),
		ingestsvc.WithMetrics(a.Metrics),
		ingestsvc.WithLimiter(ratelimiter.New(cfg.Ingest.RateLimit, cfg.Ingest.Burst, limiterIdleTTL)),
	)

	broadcastOpts := []broadcastsvc.Option{
		broadcastsvc.WithLogger(log),
		broadcastsvc.WithMetrics(a.Metrics),
	}
	if cfg.MQTT.Broker != "" {
		a.Transport = mqtt.New(mqtt.Config{
			Broker:        cfg.MQTT.Broker,
			ClientID:      cfg.MQTT.ClientID,
			Username:      cfg.MQTT.Username,
			Password:      cfg.MQTT.Password,
			TopicPrefix:   cfg.MQTT.TopicPrefix,
			IngestTimeout: cfg.Ingest.Timeout,
		}, mqtt.WithIngestion(a.Ingest), mqtt.WithLogger(log))
		broadcastOpts = append(broadcastOpts, broadcastsvc.WithTransport(a.Transport))
	}
	a.Broadcast = broadcastsvc.New(a.Identity, broadcastOpts...)

	return a, nil
}

func openRepository(ctx context.Context, cfg Config) (domain.Repository, func() error, error) {
	switch cfg.Store.Driver {
	case DriverFile, "":
		fs, err := store.NewFileStore(cfg.Home, cfg.Passphrase)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	case DriverPostgres:
		s, err := sqlstore.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}
}
