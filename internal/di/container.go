package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-users/pkg/types"
	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-statuspage/internal/commands"
	"github.com/goliatone/go-statuspage/internal/dispatcher"
	"github.com/goliatone/go-statuspage/internal/statuspage"
	"github.com/goliatone/go-statuspage/pkg/activity"
	"github.com/goliatone/go-statuspage/pkg/activity/usersink"
	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/adapters/aws_ses"
	"github.com/goliatone/go-statuspage/pkg/adapters/console"
	"github.com/goliatone/go-statuspage/pkg/adapters/smtp"
	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/cache/memory"
	rediscache "github.com/goliatone/go-statuspage/pkg/cache/redis"
	"github.com/goliatone/go-statuspage/pkg/config"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-statuspage/pkg/interfaces/cache"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/logging/zaplog"
	"github.com/goliatone/go-statuspage/pkg/notify"
	"github.com/goliatone/go-statuspage/pkg/options"
	"github.com/goliatone/go-statuspage/pkg/realtime"
	"github.com/goliatone/go-statuspage/pkg/relay/amqp"
	"github.com/goliatone/go-statuspage/pkg/storage"
)

// Options configure the DI container. Zero values are resolved from Config.
type Options struct {
	Config       config.Config
	Storage      *storage.Providers
	Logger       logger.Logger
	Cache        cache.Cache
	Messengers   []adapters.Messenger
	ActivitySink types.ActivitySink
	Now          func() time.Time
}

// Container wires storage, the realtime fan-out, the emitter, the email side
// channel and the status page service.
type Container struct {
	Config      config.Config
	Logger      logger.Logger
	Storage     storage.Providers
	Registry    *realtime.Registry
	Broadcaster broadcaster.Broadcaster
	Realtime    *dispatcher.Service
	Background  *dispatcher.Service
	Emitter     *events.Emitter
	Messengers  *adapters.Registry
	Directory   *notify.CachedDirectory
	Notifier    notify.Notifier
	StatusPage  *statuspage.Service
	Commands    *commands.Catalog
	Tokens      *auth.Tokens

	db    *bun.DB
	relay *amqp.Relay
	redis *goredis.Client
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// NewLogger builds the logger selected by cfg.
func NewLogger(cfg config.LoggingConfig) (logger.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "basic":
		return logger.New(logger.ParseLevel(cfg.Level)), nil
	default:
		zl, err := zaplog.New(cfg.Level, cfg.Format)
		if err != nil {
			return nil, err
		}
		return zl, nil
	}
}

// New constructs the container using the supplied options. Resources opened
// here are released by Close, including on a failed construction.
func New(ctx context.Context, opts Options) (_ *Container, err error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		if lgr, err = NewLogger(cfg.Logging); err != nil {
			return nil, err
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Container{Config: cfg, Logger: lgr}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
		}
	}()

	if err = c.openStorage(ctx, opts); err != nil {
		return nil, err
	}

	c.Registry = realtime.NewRegistry(lgr.With(logger.F("component", "registry")))
	targets := []broadcaster.Broadcaster{
		realtime.NewBroadcaster(c.Registry,
			realtime.WithSendTimeout(cfg.Realtime.WriteTimeout),
			realtime.WithLogger(lgr.With(logger.F("component", "broadcaster"))),
		),
	}
	if cfg.Relay.Enabled {
		c.relay, err = amqp.Dial(ctx, amqp.Config{URL: cfg.Relay.URL, Exchange: cfg.Relay.Exchange}, lgr)
		if err != nil {
			return nil, err
		}
		targets = append(targets, c.relay)
	}
	c.Broadcaster = broadcaster.NewFanout(targets...)

	if c.Realtime, err = dispatcher.New(dispatcher.Dependencies{
		Name: "realtime",
		Config: dispatcher.Config{
			Workers:    cfg.Emitter.RealtimeWorkers,
			QueueSize:  cfg.Emitter.RealtimeQueue,
			JobTimeout: cfg.Emitter.JobTimeout,
		},
		Logger: lgr,
	}); err != nil {
		return nil, err
	}
	if c.Background, err = dispatcher.New(dispatcher.Dependencies{
		Name: "background",
		Config: dispatcher.Config{
			Workers:    cfg.Emitter.BackgroundWorkers,
			QueueSize:  cfg.Emitter.BackgroundQueue,
			JobTimeout: cfg.Emitter.JobTimeout,
		},
		Logger: lgr,
	}); err != nil {
		return nil, err
	}

	if err = c.buildNotifier(ctx, opts, now); err != nil {
		return nil, err
	}

	sink := opts.ActivitySink
	if sink == nil {
		sink = usersink.LoggerSink{Logger: lgr}
	}
	if c.Emitter, err = events.New(events.Dependencies{
		Broadcaster: c.Broadcaster,
		Realtime:    c.Realtime,
		Background:  c.Background,
		Notifier:    c.Notifier,
		Activity:    activity.Hooks{usersink.Hook{Sink: sink, Logger: lgr}},
		Logger:      lgr.With(logger.F("component", "emitter")),
		Now:         now,
	}); err != nil {
		return nil, err
	}

	if c.StatusPage, err = statuspage.New(statuspage.Dependencies{
		Store:     c.Storage,
		Events:    c.Emitter,
		Directory: c.Directory,
		Logger:    lgr,
		Now:       now,
	}); err != nil {
		return nil, err
	}

	if c.Commands, err = commands.NewCatalog(commands.Dependencies{
		Service: c.StatusPage,
		Logger:  lgr,
	}); err != nil {
		return nil, err
	}

	secret := cfg.Auth.JWTSecret
	if strings.TrimSpace(secret) == "" {
		lgr.Warn("auth.jwt_secret not set, tokens will not survive a restart")
		secret = uuid.NewString()
	}
	if c.Tokens, err = auth.NewTokens(auth.Config{
		Secret: secret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	}); err != nil {
		return nil, err
	}

	lgr.Info("container ready",
		logger.F("database", cfg.Database.Driver),
		logger.F("email_provider", cfg.Email.Provider),
		logger.F("relay", cfg.Relay.Enabled),
		logger.F("redis", c.redis != nil),
	)
	return c, nil
}

func (c *Container) openStorage(ctx context.Context, opts Options) error {
	if opts.Storage != nil {
		c.Storage = *opts.Storage
		return nil
	}
	switch c.Config.Database.Driver {
	case "sqlite":
		db, err := storage.OpenSQLite(c.Config.Database.DSN)
		if err != nil {
			return err
		}
		c.db = db
		if c.Config.Database.CreateSchema {
			if err := storage.CreateSchema(ctx, db); err != nil {
				return err
			}
		}
		c.Storage = storage.NewBunProviders(db)
	default:
		c.Storage = storage.NewMemoryProviders()
	}
	return nil
}

func (c *Container) buildNotifier(ctx context.Context, opts Options, now func() time.Time) error {
	cfg := c.Config
	lgr := c.Logger

	store := opts.Cache
	if store == nil {
		if url := strings.TrimSpace(cfg.Cache.RedisURL); url != "" {
			client, err := rediscache.Connect(ctx, url)
			if err != nil {
				return err
			}
			c.redis = client
			if store, err = rediscache.New(client, rediscache.WithPrefix(cfg.Cache.Prefix), rediscache.WithLogger(lgr)); err != nil {
				return err
			}
		} else {
			store = memory.New()
		}
	}
	c.Directory = notify.NewCachedDirectory(notify.StoreDirectory{
		Organizations: c.Storage.Organizations,
		Memberships:   c.Storage.Memberships,
	}, store, cfg.Notifications.AudienceTTL, lgr)

	c.Messengers = adapters.NewRegistry(opts.Messengers...)
	if len(opts.Messengers) == 0 {
		m, err := newMessenger(cfg, lgr)
		if err != nil {
			return err
		}
		c.Messengers.Register(m)
	}

	if !cfg.Notifications.Enabled {
		c.Notifier = notify.Nop{}
		return nil
	}

	translator, err := notify.NewTranslator(cfg.Localization.DefaultLocale)
	if err != nil {
		return err
	}
	renderer, err := notify.NewRenderer(translator,
		notify.WithProductName(cfg.Notifications.ProductName),
		notify.WithDefaultLocale(cfg.Localization.DefaultLocale),
	)
	if err != nil {
		return err
	}
	policy := options.NewPolicyResolver(options.PolicyDefaults{
		Enabled: true,
		Locale:  cfg.Localization.DefaultLocale,
	})
	svc, err := notify.New(notify.Dependencies{
		Directory:   c.Directory,
		Renderer:    renderer,
		Messengers:  c.Messengers,
		From:        cfg.Notifications.From,
		Policy:      &policy,
		MaxAttempts: cfg.Notifications.MaxAttempts,
		Logger:      lgr.With(logger.F("component", "notify")),
		Now:         now,
	})
	if err != nil {
		return err
	}
	c.Notifier = svc
	return nil
}

func newMessenger(cfg config.Config, lgr logger.Logger) (adapters.Messenger, error) {
	switch cfg.Email.Provider {
	case "console":
		return console.New(lgr), nil
	case "smtp":
		s := cfg.Email.SMTP
		return smtp.New(lgr, smtp.WithConfig(smtp.Config{
			Host:        s.Host,
			Port:        s.Port,
			Username:    s.Username,
			Password:    s.Password,
			From:        cfg.Notifications.From,
			UseTLS:      s.UseTLS,
			UseStartTLS: s.StartTLS,
		})), nil
	case "ses":
		return aws_ses.New(lgr, aws_ses.WithConfig(aws_ses.Config{
			From:   cfg.Notifications.From,
			Region: cfg.Email.SES.Region,
			DryRun: cfg.Email.SES.DryRun,
		})), nil
	default:
		return nil, fmt.Errorf("di: unknown email provider %q", cfg.Email.Provider)
	}
}

// Close drains the worker pools and releases external connections.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Realtime != nil {
		errs = append(errs, c.Realtime.Close(ctx))
	}
	if c.Background != nil {
		errs = append(errs, c.Background.Close(ctx))
	}
	if c.Registry != nil {
		c.Registry.CloseAll()
	}
	if c.relay != nil {
		errs = append(errs, c.relay.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}
