package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string // data directory, e.g. $HOME/.blechat
	Passphrase string // seals the primary private key in the file store
	Store      StoreConfig
	MQTT       MQTTConfig
	Ingest     IngestConfig
	Metrics    MetricsConfig
	Log        LogConfig
}

type StoreConfig struct {
	Driver string
	DSN    string
}

type MQTTConfig struct {
	Broker      string
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string
	Password    string
}

type IngestConfig struct {
	Timeout   time.Duration
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

// NewViper returns a viper instance with defaults and BLECHAT_ environment
// overrides, e.g. BLECHAT_MQTT_BROKER for mqtt.broker.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("home", "")
	v.SetDefault("passphrase", "")
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.dsn", "")
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic_prefix", "blechat/v1")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("ingest.timeout", 5*time.Second)
	v.SetDefault("ingest.rate_limit", 0.0)
	v.SetDefault("ingest.burst", 10)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("blechat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads file (or config.yaml in the home directory when file is
// empty) into v and returns the resulting Config. A missing default config
// file is not an error.
func LoadConfig(v *viper.Viper, file string) (Config, error) {
	home, err := resolveHome(v.GetString("home"))
	if err != nil {
		return Config{}, err
	}
	v.Set("home", home)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "blechat-" + uuid.NewString()
	}
	return c, c.Validate()
}

// Validate checks option combinations viper cannot express.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Ingest.RateLimit < 0 || c.Ingest.Burst < 0 {
		return errors.New("ingest.rate_limit and ingest.burst must not be negative")
	}
	return nil
}

func resolveHome(home string) (string, error) {
	if home != "" {
		return home, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".blechat"), nil
}
