// Package mqtt carries blechat packets over an MQTT broker.
//
// Each packet kind has its own topic under a shared prefix. The broker plays
// the part of the radio: every subscriber in range (on the broker) receives
// every packet published by anyone else.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"blechat/internal/domain"
)

// Config describes the broker connection.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	// IngestTimeout bounds the work done for one received packet.
	IngestTimeout time.Duration
}

const (
	defaultTopicPrefix   = "blechat/v1"
	defaultIngestTimeout = 5 * time.Second
	qos                  = 0
	disconnectQuiesceMS  = 250
)

// Transport publishes packets and, once subscribed, feeds received ones to an
// IngestionService.
type Transport struct {
	cfg    Config
	client paho.Client
	ingest domain.IngestionService
	log    logrus.FieldLogger
}

// Option configures a Transport.
type Option func(*Transport)

// WithIngestion sets the service received packets are handed to. Without it
// the transport only publishes.
func WithIngestion(svc domain.IngestionService) Option {
	return func(t *Transport) { t.ingest = svc }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Transport) { t.log = l }
}

// WithClient replaces the paho client built from Config.
func WithClient(c paho.Client) Option {
	return func(t *Transport) { t.client = c }
}

// New builds a transport for cfg. Call Connect before use.
func New(cfg Config, opts ...Option) *Transport {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = defaultTopicPrefix
	}
	if cfg.IngestTimeout <= 0 {
		cfg.IngestTimeout = defaultIngestTimeout
	}
	t := &Transport{cfg: cfg, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = paho.NewClient(t.clientOptions())
	}
	return t
}

func (t *Transport) clientOptions() *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(t.cfg.Broker)
	opts.SetClientID(t.cfg.ClientID)
	opts.SetUsername(t.cfg.Username)
	opts.SetPassword(t.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.OnConnect = t.onConnect
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		t.log.WithError(err).Warn("MQTT connection lost")
	}
	return opts
}

// onConnect (re)subscribes after every connect, including auto-reconnects.
func (t *Transport) onConnect(c paho.Client) {
	t.log.WithField("broker", t.cfg.Broker).Info("connected to MQTT")
	if t.ingest == nil {
		return
	}
	if err := t.subscribe(context.Background(), c); err != nil {
		t.log.WithError(err).Error("MQTT subscribe failed")
	}
}

// Topic returns the topic packets of kind are published on.
func Topic(prefix string, kind domain.PacketKind) string {
	return prefix + "/" + string(kind)
}

// Connect dials the broker.
func (t *Transport) Connect(ctx context.Context) error {
	if err := wait(ctx, t.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", t.cfg.Broker, err)
	}
	return nil
}

// Close disconnects from the broker.
func (t *Transport) Close() {
	t.client.Disconnect(disconnectQuiesceMS)
}

// Broadcast publishes one packet on the topic for kind.
func (t *Transport) Broadcast(ctx context.Context, kind domain.PacketKind, packet []byte) error {
	topic := Topic(t.cfg.TopicPrefix, kind)
	if err := wait(ctx, t.client.Publish(topic, qos, false, packet)); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func (t *Transport) subscribe(ctx context.Context, c paho.Client) error {
	for _, kind := range []domain.PacketKind{domain.PacketKindIdentity, domain.PacketKindMessage} {
		topic := Topic(t.cfg.TopicPrefix, kind)
		if err := wait(ctx, c.Subscribe(topic, qos, t.handler(kind))); err != nil {
			return fmt.Errorf("mqtt subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// handler ingests one received packet. Undecodable packets are logged and
// dropped; the sender is never told.
func (t *Transport) handler(kind domain.PacketKind) paho.MessageHandler {
	return func(_ paho.Client, m paho.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), t.cfg.IngestTimeout)
		defer cancel()

		var err error
		switch kind {
		case domain.PacketKindIdentity:
			_, err = t.ingest.ConsumeReceivedIdentity(ctx, m.Payload())
		case domain.PacketKindMessage:
			_, err = t.ingest.ConsumeReceivedBroadcastMessage(ctx, m.Payload())
		}
		if err == nil {
			return
		}

		log := t.log.WithError(err).WithFields(logrus.Fields{"topic": m.Topic(), "bytes": len(m.Payload())})
		switch {
		case errors.Is(err, domain.ErrMalformedPacket), errors.Is(err, domain.ErrTruncatedPacket),
			errors.Is(err, domain.ErrRateLimited):
			log.Debug("dropped packet")
		case errors.Is(err, domain.ErrRetryable):
			log.Warn("packet ingest timed out")
		default:
			log.Error("packet ingest failed")
		}
	}
}

// wait blocks until tok completes or ctx is done.
func wait(ctx context.Context, tok paho.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compile-time assertion that Transport implements domain.Transport.
var _ domain.Transport = (*Transport)(nil)
