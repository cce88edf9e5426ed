package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages (server,
// emitter, notifications, etc.) pull from these nested structs.
type Config struct {
	Server        ServerConfig        `mapstructure:"server" json:"server" yaml:"server" envPrefix:"SERVER_"`
	Database      DatabaseConfig      `mapstructure:"database" json:"database" yaml:"database" envPrefix:"DATABASE_"`
	Realtime      RealtimeConfig      `mapstructure:"realtime" json:"realtime" yaml:"realtime" envPrefix:"REALTIME_"`
	Emitter       EmitterConfig       `mapstructure:"emitter" json:"emitter" yaml:"emitter" envPrefix:"EMITTER_"`
	Notifications NotificationsConfig `mapstructure:"notifications" json:"notifications" yaml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Email         EmailConfig         `mapstructure:"email" json:"email" yaml:"email" envPrefix:"EMAIL_"`
	Relay         RelayConfig         `mapstructure:"relay" json:"relay" yaml:"relay" envPrefix:"RELAY_"`
	Cache         CacheConfig         `mapstructure:"cache" json:"cache" yaml:"cache" envPrefix:"CACHE_"`
	Auth          AuthConfig          `mapstructure:"auth" json:"auth" yaml:"auth" envPrefix:"AUTH_"`
	Localization  LocalizationConfig  `mapstructure:"localization" json:"localization" yaml:"localization" envPrefix:"LOCALIZATION_"`
	Logging       LoggingConfig       `mapstructure:"logging" json:"logging" yaml:"logging" envPrefix:"LOGGING_"`
}

// ServerConfig controls the HTTP and WebSocket listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr" yaml:"addr" env:"ADDR"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the repository backend.
type DatabaseConfig struct {
	// Driver is "memory" or "sqlite".
	Driver       string `mapstructure:"driver" json:"driver" yaml:"driver" env:"DRIVER"`
	DSN          string `mapstructure:"dsn" json:"dsn" yaml:"dsn" env:"DSN"`
	CreateSchema bool   `mapstructure:"create_schema" json:"create_schema" yaml:"create_schema" env:"CREATE_SCHEMA"`
}

// RealtimeConfig tunes subscriber connections.
type RealtimeConfig struct {
	SendBuffer   int           `mapstructure:"send_buffer" json:"send_buffer" yaml:"send_buffer" env:"SEND_BUFFER"`
	PingInterval time.Duration `mapstructure:"ping_interval" json:"ping_interval" yaml:"ping_interval" env:"PING_INTERVAL"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// EmitterConfig sizes the emission worker queues.
type EmitterConfig struct {
	RealtimeWorkers   int           `mapstructure:"realtime_workers" json:"realtime_workers" yaml:"realtime_workers" env:"REALTIME_WORKERS"`
	RealtimeQueue     int           `mapstructure:"realtime_queue" json:"realtime_queue" yaml:"realtime_queue" env:"REALTIME_QUEUE"`
	BackgroundWorkers int           `mapstructure:"background_workers" json:"background_workers" yaml:"background_workers" env:"BACKGROUND_WORKERS"`
	BackgroundQueue   int           `mapstructure:"background_queue" json:"background_queue" yaml:"background_queue" env:"BACKGROUND_QUEUE"`
	JobTimeout        time.Duration `mapstructure:"job_timeout" json:"job_timeout" yaml:"job_timeout" env:"JOB_TIMEOUT"`
}

// NotificationsConfig controls the email side channel.
type NotificationsConfig struct {
	Enabled     bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled" env:"ENABLED"`
	From        string        `mapstructure:"from" json:"from" yaml:"from" env:"FROM"`
	ProductName string        `mapstructure:"product_name" json:"product_name" yaml:"product_name" env:"PRODUCT_NAME"`
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts" yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	AudienceTTL time.Duration `mapstructure:"audience_ttl" json:"audience_ttl" yaml:"audience_ttl" env:"AUDIENCE_TTL"`
}

// EmailConfig selects and configures the email adapter.
type EmailConfig struct {
	// Provider is "console", "smtp" or "ses".
	Provider string     `mapstructure:"provider" json:"provider" yaml:"provider" env:"PROVIDER"`
	SMTP     SMTPConfig `mapstructure:"smtp" json:"smtp" yaml:"smtp" envPrefix:"SMTP_"`
	SES      SESConfig  `mapstructure:"ses" json:"ses" yaml:"ses" envPrefix:"SES_"`
}

// SMTPConfig mirrors the SMTP adapter settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host" env:"HOST"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port" env:"PORT"`
	Username string `mapstructure:"username" json:"username" yaml:"username" env:"USERNAME"`
	Password string `mapstructure:"password" json:"password" yaml:"password" env:"PASSWORD"`
	UseTLS   bool   `mapstructure:"use_tls" json:"use_tls" yaml:"use_tls" env:"USE_TLS"`
	StartTLS bool   `mapstructure:"start_tls" json:"start_tls" yaml:"start_tls" env:"START_TLS"`
}

// SESConfig mirrors the SES adapter settings.
type SESConfig struct {
	Region string `mapstructure:"region" json:"region" yaml:"region" env:"REGION"`
	DryRun bool   `mapstructure:"dry_run" json:"dry_run" yaml:"dry_run" env:"DRY_RUN"`
}

// RelayConfig enables republishing events to AMQP.
type RelayConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled" env:"ENABLED"`
	URL      string `mapstructure:"url" json:"url" yaml:"url" env:"URL"`
	Exchange string `mapstructure:"exchange" json:"exchange" yaml:"exchange" env:"EXCHANGE"`
}

// CacheConfig selects the audience cache backend. An empty RedisURL keeps
// the cache in process.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url" json:"redis_url" yaml:"redis_url" env:"REDIS_URL"`
	Prefix   string `mapstructure:"prefix" json:"prefix" yaml:"prefix" env:"PREFIX"`
}

// AuthConfig controls bearer token verification.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" json:"jwt_secret" yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `mapstructure:"issuer" json:"issuer" yaml:"issuer" env:"ISSUER"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" json:"token_ttl" yaml:"token_ttl" env:"TOKEN_TTL"`
}

// LocalizationConfig controls the default locale.
type LocalizationConfig struct {
	DefaultLocale string `mapstructure:"default_locale" json:"default_locale" yaml:"default_locale" env:"DEFAULT_LOCALE"`
}

// LoggingConfig selects the logger. Format "basic" uses the built-in
// key=value logger; "json" and "console" use zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" env:"LEVEL"`
	Format string `mapstructure:"format" json:"format" yaml:"format" env:"FORMAT"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "memory",
			CreateSchema: true,
		},
		Realtime: RealtimeConfig{
			SendBuffer:   64,
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Emitter: EmitterConfig{
			RealtimeWorkers:   4,
			RealtimeQueue:     256,
			BackgroundWorkers: 4,
			BackgroundQueue:   512,
			JobTimeout:        time.Minute,
		},
		Notifications: NotificationsConfig{
			Enabled:     true,
			From:        "status@example.com",
			ProductName: "Status Page",
			MaxAttempts: 3,
			AudienceTTL: 30 * time.Second,
		},
		Email: EmailConfig{
			Provider: "console",
			SMTP:     SMTPConfig{Port: 587, StartTLS: true},
			SES:      SESConfig{Region: "us-east-1"},
		},
		Relay: RelayConfig{
			Exchange: "statuspage.events",
		},
		Cache: CacheConfig{
			Prefix: "statuspage:",
		},
		Auth: AuthConfig{
			Issuer:   "statuspage",
			TokenTTL: 24 * time.Hour,
		},
		Localization: LocalizationConfig{DefaultLocale: "en"},
		Logging:      LoggingConfig{Level: "info", Format: "basic"},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Localization.DefaultLocale == "" {
		return errors.New("localization.default_locale is required")
	}
	switch c.Database.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("database.driver must be memory or sqlite, got %q", c.Database.Driver)
	}
	switch c.Email.Provider {
	case "console", "smtp", "ses":
	default:
		return fmt.Errorf("email.provider must be console, smtp or ses, got %q", c.Email.Provider)
	}
	if c.Email.Provider == "smtp" && strings.TrimSpace(c.Email.SMTP.Host) == "" {
		return errors.New("email.smtp.host is required for the smtp provider")
	}
	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be > 0")
	}
	if c.Realtime.PingInterval <= 0 {
		return fmt.Errorf("realtime.ping_interval must be > 0")
	}
	if c.Emitter.RealtimeWorkers <= 0 || c.Emitter.BackgroundWorkers <= 0 {
		return fmt.Errorf("emitter workers must be > 0")
	}
	if c.Emitter.RealtimeQueue <= 0 || c.Emitter.BackgroundQueue <= 0 {
		return fmt.Errorf("emitter queues must be > 0")
	}
	if c.Emitter.JobTimeout < 0 {
		return fmt.Errorf("emitter.job_timeout must be >= 0")
	}
	if c.Notifications.MaxAttempts < 0 {
		return fmt.Errorf("notifications.max_attempts must be >= 0")
	}
	if c.Relay.Enabled && strings.TrimSpace(c.Relay.URL) == "" {
		return errors.New("relay.url is required when the relay is enabled")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "basic", "json", "console":
	default:
		return fmt.Errorf("logging.format must be basic, json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers,
// falling back to a JSON round trip when cfgx yields a zero value.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

// withDefaults fills zero fields from Defaults. Booleans are left alone so an
// explicit false survives.
func (c Config) withDefaults() Config {
	d := Defaults()

	setString(&c.Server.Addr, d.Server.Addr)
	setDuration(&c.Server.ShutdownTimeout, d.Server.ShutdownTimeout)
	setString(&c.Database.Driver, d.Database.Driver)
	setInt(&c.Realtime.SendBuffer, d.Realtime.SendBuffer)
	setDuration(&c.Realtime.PingInterval, d.Realtime.PingInterval)
	setDuration(&c.Realtime.WriteTimeout, d.Realtime.WriteTimeout)
	setInt(&c.Emitter.RealtimeWorkers, d.Emitter.RealtimeWorkers)
	setInt(&c.Emitter.RealtimeQueue, d.Emitter.RealtimeQueue)
	setInt(&c.Emitter.BackgroundWorkers, d.Emitter.BackgroundWorkers)
	setInt(&c.Emitter.BackgroundQueue, d.Emitter.BackgroundQueue)
	setDuration(&c.Emitter.JobTimeout, d.Emitter.JobTimeout)
	setString(&c.Notifications.From, d.Notifications.From)
	setString(&c.Notifications.ProductName, d.Notifications.ProductName)
	setInt(&c.Notifications.MaxAttempts, d.Notifications.MaxAttempts)
	setDuration(&c.Notifications.AudienceTTL, d.Notifications.AudienceTTL)
	setString(&c.Email.Provider, d.Email.Provider)
	setInt(&c.Email.SMTP.Port, d.Email.SMTP.Port)
	setString(&c.Email.SES.Region, d.Email.SES.Region)
	setString(&c.Relay.Exchange, d.Relay.Exchange)
	setString(&c.Cache.Prefix, d.Cache.Prefix)
	setString(&c.Auth.Issuer, d.Auth.Issuer)
	setDuration(&c.Auth.TokenTTL, d.Auth.TokenTTL)
	setString(&c.Localization.DefaultLocale, d.Localization.DefaultLocale)
	setString(&c.Logging.Level, d.Logging.Level)
	setString(&c.Logging.Format, d.Logging.Format)
	return c
}

func setString(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}

func setInt(dst *int, fallback int) {
	if *dst == 0 {
		*dst = fallback
	}
}

func setDuration(dst *time.Duration, fallback time.Duration) {
	if *dst == 0 {
		*dst = fallback
	}
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
