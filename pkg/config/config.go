package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TABLEMESH_DB_DSN"
	EnvDBHost = "TABLEMESH_DB_HOST"
	EnvDBUser = "TABLEMESH_DB_USER"
	EnvDBName = "TABLEMESH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Display      DisplayConfig
	Realtime     RealtimeConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TABLEMESH_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLEMESH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLEMESH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLEMESH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TABLEMESH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TABLEMESH_DB_DSN"`
	Driver string `envconfig:"TABLEMESH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABLEMESH_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLEMESH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLEMESH_DB_USER"`
	LegacyPassword string `envconfig:"TABLEMESH_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLEMESH_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLEMESH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLEMESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLEMESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLEMESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLEMESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLEMESH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABLEMESH_REDIS_ADDR"`
	Password     string        `envconfig:"TABLEMESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLEMESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLEMESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLEMESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLEMESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLEMESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLEMESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TABLEMESH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TABLEMESH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TABLEMESH_JWT_EXPIRATION_MINUTES" default:"720"`
}

// DisplayConfig carries the age-band thresholds the kitchen display paints
// urgency with. They are tunable per deployment, not business law.
type DisplayConfig struct {
	FreshUnder  time.Duration `envconfig:"TABLEMESH_DISPLAY_FRESH_UNDER" default:"8m"`
	DelayedOver time.Duration `envconfig:"TABLEMESH_DISPLAY_DELAYED_OVER" default:"15m"`
}

type RealtimeConfig struct {
	ChannelPrefix     string        `envconfig:"TABLEMESH_REALTIME_CHANNEL_PREFIX" default:"kds"`
	SubscriberBuffer  int           `envconfig:"TABLEMESH_REALTIME_SUBSCRIBER_BUFFER" default:"32"`
	KeepaliveInterval time.Duration `envconfig:"TABLEMESH_REALTIME_KEEPALIVE_INTERVAL" default:"30s"`
	RetryHintMS       int           `envconfig:"TABLEMESH_REALTIME_RETRY_HINT_MS" default:"2000"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TABLEMESH_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TABLEMESH_OUTBOX_PUBLISH_POLL_MS" default:"250"`
	MaxAttempts    int `envconfig:"TABLEMESH_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TABLEMESH_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TABLEMESH_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TABLEMESH_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PaymentsSubscription string `envconfig:"TABLEMESH_PUBSUB_PAYMENTS_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TABLEMESH_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
