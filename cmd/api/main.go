package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/weddingseo/contentproxy/internal/api"
	"github.com/weddingseo/contentproxy/internal/config"
	"github.com/weddingseo/contentproxy/internal/database"
	"github.com/weddingseo/contentproxy/internal/events"
	"github.com/weddingseo/contentproxy/internal/identity"
	"github.com/weddingseo/contentproxy/internal/llm"
	mw "github.com/weddingseo/contentproxy/internal/middleware"
	"github.com/weddingseo/contentproxy/internal/proxy"
	"github.com/weddingseo/contentproxy/internal/quota"
	iredis "github.com/weddingseo/contentproxy/internal/redis"
	"github.com/weddingseo/contentproxy/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("contentproxy exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is shared by the redis store and the per-IP guard.
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient, err = iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()
	}

	store, closeStore, err := openStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	profiles := quota.DefaultProfiles()
	if cfg.Store.LimitsFile != "" {
		profiles, err = quota.LoadProfiles(cfg.Store.LimitsFile)
		if err != nil {
			return fmt.Errorf("loading rate limits: %w", err)
		}
		slog.Info("loaded rate limit profiles", "file", cfg.Store.LimitsFile)
	}

	validator, err := identity.New(cfg.Identity)
	if err != nil {
		return err
	}

	checks := map[string]api.ReadinessCheck{}
	if p, ok := store.(quota.Pinger); ok {
		checks["store"] = p.Ping
	}

	// Events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsClient, err := events.NewClient(ctx, cfg.NATS)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
		checks["nats"] = func(context.Context) error {
			if !natsClient.Healthy() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	handler := proxy.NewHandler(proxy.Deps{
		Identity: validator,
		Limiter:  quota.NewLimiter(store, profiles, time.Now),
		Tracker:  quota.NewTracker(store, profiles, time.Now),
		Reporter: quota.NewReporter(store, profiles, time.Now),
		LLM:      llm.NewClient(cfg.Anthropic),
		Events:   publisher,
		Profiles: profiles,
		Now:      time.Now,

		AccountingTimeout: cfg.Store.Timeout,
	})

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		Checks:             checks,
	}
	if cfg.IPLimit.Enabled() {
		routerCfg.IPRateLimiter = mw.NewRateLimiter(redisClient, cfg.IPLimit.Max, cfg.IPLimit.WindowSec).Middleware
	}

	router := api.NewRouter(routerCfg, api.HandlerSet{
		Generate: handler.Generate,
		Quota:    handler.Quota,
	})

	slog.Info("contentproxy ready",
		"store", cfg.Store.Driver,
		"identity", cfg.Identity.Mode,
		"model", cfg.Anthropic.Model,
		"events", cfg.NATS.URL != "",
	)

	return server.New(cfg.Server, router).Run(ctx)
}

func openStore(ctx context.Context, cfg *config.Config, redisClient *goredis.Client) (quota.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to postgres: %w", err)
		}
		return quota.NewPostgresStore(pool), pool.Close, nil
	case config.StoreDriverRedis:
		return quota.NewRedisStore(redisClient), noop, nil
	case config.StoreDriverSQLite:
		s, err := quota.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("opening sqlite: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Warn("closing sqlite", "error", err)
			}
		}, nil
	case config.StoreDriverMemory:
		slog.Warn("using in-memory quota store; counters are lost on restart and not shared between replicas")
		return quota.NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// setupLogger installs the default slog logger. With cfg.File set, output also goes
// to a size-rotated file. The returned func closes that file.
func setupLogger(cfg config.LogConfig) func() {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closeFn
}
