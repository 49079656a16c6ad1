package app

import (
	"context"
	"errors"

	"blechat/internal/domain"
	"blechat/internal/metrics"
	broadcastsvc "blechat/internal/services/broadcast"
	identitysvc "blechat/internal/services/identity"
	ingestsvc "blechat/internal/services/ingest"
	"blechat/internal/transport/mqtt"
)

// App bundles the repository, services and transport for the CLI.
type App struct {
	Config    Config
	Repo      domain.Repository
	Identity  *identitysvc.Service
	Ingest    *ingestsvc.Service
	Broadcast *broadcastsvc.Service
	Metrics   *metrics.Metrics
	// Transport is nil when no broker is configured.
	Transport *mqtt.Transport

	closers []func() error
}

// ErrNoBroker is returned by Connect when mqtt.broker is not set.
var ErrNoBroker = errors.New("no MQTT broker configured (set mqtt.broker or --broker)")

// Connect dials the MQTT broker.
func (a *App) Connect(ctx context.Context) error {
	if a.Transport == nil {
		return ErrNoBroker
	}
	if err := a.Transport.Connect(ctx); err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		a.Transport.Close()
		return nil
	})
	return nil
}

// Close releases everything Build and Connect opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
