package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name     string `mapstructure:"NAME"`
		Port     string `mapstructure:"PORT"`
		LogLevel string `mapstructure:"LOG_LEVEL"`
	}

	DATABASE struct {
		Driver      string `mapstructure:"DRIVER"`
		AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`
		Postgres    struct {
			DSN string `mapstructure:"URL"`
		}
		Sqlite struct {
			Path string `mapstructure:"PATH"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
			DB       int    `mapstructure:"DB"`
		}
		Mongo struct {
			Url      string `mapstructure:"URL"`
			Database string `mapstructure:"DATABASE"`
		}
	}

	JWT struct {
		SigningKey    string `mapstructure:"SIGNING_KEY"`
		PublicKeyPath string `mapstructure:"PUBLIC_KEY_PATH"`
	}

	WS WSConfig

	WORKER struct {
		Count        int           `mapstructure:"COUNT"`
		MaxRetry     int           `mapstructure:"MAX_RETRY"`
		PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`
	}
}

// WSConfig holds the websocket gateway knobs. TrustProxyHeaders takes the
// client address from X-Forwarded-For / X-Real-IP; enable it only behind a
// proxy that overwrites them.
type WSConfig struct {
	AllowAnonymous    bool          `mapstructure:"ALLOW_ANONYMOUS"`
	RequireMembership bool          `mapstructure:"REQUIRE_MEMBERSHIP"`
	HandshakeTimeout  time.Duration `mapstructure:"HANDSHAKE_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"IDLE_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"WRITE_TIMEOUT"`
	PersistTimeout    time.Duration `mapstructure:"PERSIST_TIMEOUT"`
	SendBuffer        int           `mapstructure:"SEND_BUFFER"`
	MaxMessageSize    int64         `mapstructure:"MAX_MESSAGE_SIZE"`
	MessageRate       float64       `mapstructure:"MESSAGE_RATE"`
	MessageBurst      int           `mapstructure:"MESSAGE_BURST"`
	MaxConnections    int           `mapstructure:"MAX_CONNECTIONS"`
	ConnectionsPerIP  int           `mapstructure:"CONNECTIONS_PER_IP"`
	TrustProxyHeaders bool          `mapstructure:"TRUST_PROXY_HEADERS"`
}

var Conf *AppConfig

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP.NAME", "elearning-chat")
	v.SetDefault("APP.PORT", ":8000")
	v.SetDefault("APP.LOG_LEVEL", "info")

	v.SetDefault("DATABASE.DRIVER", "postgres")
	v.SetDefault("DATABASE.AUTO_MIGRATE", false)
	v.SetDefault("DATABASE.POSTGRES.URL", "")
	v.SetDefault("DATABASE.SQLITE.PATH", "chat.db")
	v.SetDefault("DATABASE.REDIS.ADDR", "localhost:6379")
	v.SetDefault("DATABASE.REDIS.PASSWORD", "")
	v.SetDefault("DATABASE.REDIS.DB", 0)
	v.SetDefault("DATABASE.MONGO.URL", "")
	v.SetDefault("DATABASE.MONGO.DATABASE", "chat_collection")

	v.SetDefault("JWT.SIGNING_KEY", "")
	v.SetDefault("JWT.PUBLIC_KEY_PATH", "")

	v.SetDefault("WS.ALLOW_ANONYMOUS", false)
	v.SetDefault("WS.REQUIRE_MEMBERSHIP", false)
	v.SetDefault("WS.HANDSHAKE_TIMEOUT", 10*time.Second)
	v.SetDefault("WS.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("WS.WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("WS.PERSIST_TIMEOUT", 15*time.Second)
	v.SetDefault("WS.SEND_BUFFER", 256)
	v.SetDefault("WS.MAX_MESSAGE_SIZE", 1<<20)
	v.SetDefault("WS.MESSAGE_RATE", 10.0)
	v.SetDefault("WS.MESSAGE_BURST", 20)
	v.SetDefault("WS.MAX_CONNECTIONS", 10000)
	v.SetDefault("WS.CONNECTIONS_PER_IP", 20)
	v.SetDefault("WS.TRUST_PROXY_HEADERS", false)

	v.SetDefault("WORKER.COUNT", 5)
	v.SetDefault("WORKER.MAX_RETRY", 5)
	v.SetDefault("WORKER.POLL_INTERVAL", time.Second)
}

// LoadConfig reads application.yaml from the working directory (if present)
// and overlays CHATAPP_* environment variables.
func LoadConfig() error {
	cfg, err := Load(".")
	if err != nil {
		return err
	}

	Conf = cfg
	log.Info().Msg("configuration loaded...")
	return nil
}

// Load builds a config from application.yaml in dir plus the environment.
func Load(dir string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CHATAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn().Str("dir", dir).Msg("application.yaml not found, using defaults and environment")
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.JWT.SigningKey == "" && config.JWT.PublicKeyPath == "" {
		return nil, fmt.Errorf("either JWT.SIGNING_KEY or JWT.PUBLIC_KEY_PATH must be set")
	}

	return &config, nil
}

// WithDefaults fills unset durations and sizes so a partially built config
// (as in tests) is still usable.
func (c WSConfig) WithDefaults() WSConfig {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 15 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 1 << 20
	}
	if c.MessageBurst <= 0 {
		c.MessageBurst = 20
	}
	return c
}
