// Package cli wires the configuration into a ready storefront client for the
// commands under cmd/storefront.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/actions"
	"github.com/aretw0/storefront/pkg/adapters/api"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/adapters/sqlite"
	"github.com/aretw0/storefront/pkg/observability"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// App is a storefront client built from configuration.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Client  *storefront.Client
	API     *api.Client
	Metrics *observability.Metrics
}

// NewLogger creates the application logger described by cfg.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, logging.Format(strings.ToLower(cfg.LogFormat))), nil
}

// ParseLatePolicy maps "drop" and "apply" to the engine policy.
func ParseLatePolicy(s string) (storefront.LatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return storefront.DropSuperseded, nil
	case "apply":
		return storefront.ApplyLate, nil
	}
	return storefront.DropSuperseded, fmt.Errorf("unknown late policy %q", s)
}

// OpenFallback opens the configured fallback store, wrapped with reason
// redaction and payload encryption when enabled. The locker is only set for
// backends shared between processes.
func OpenFallback(ctx context.Context, cfg config.FallbackConfig, logger *slog.Logger) (ports.FallbackStore, ports.Locker, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	mws, err := fallbackMiddleware(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var (
		store  ports.FallbackStore
		locker ports.Locker
	)
	switch cfg.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = db
	case config.BackendRedis:
		rdb := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.RedisPrefix))
		}
		store = redis.NewFromClient(rdb, opts...)
		locker = redis.NewLocker(rdb, cfg.RedisPrefix)
	default:
		return nil, nil, fmt.Errorf("unknown fallback backend %q", cfg.Backend)
	}
	return middleware.Chain(store, mws...), locker, nil
}

func fallbackMiddleware(cfg config.FallbackConfig, logger *slog.Logger) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.RedactReasons {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultReasonPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	enc := middleware.EncryptionConfig{Logger: logger}
	var err error
	if enc.ActiveKey, err = base64.StdEncoding.DecodeString(cfg.EncryptionKey); err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	for i, k := range cfg.PreviousKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("decode previous key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	sealed, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, sealed), nil
}

// Build creates the API client, the fallback store and the storefront client.
// Audit hooks are attached when the logger is enabled for debug.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	policy, err := ParseLatePolicy(cfg.Engine.LatePolicy)
	if err != nil {
		return nil, err
	}

	apiClient, err := api.New(cfg.API.BaseURL,
		api.WithToken(cfg.API.Token),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithCacheTTL(cfg.API.CacheTTL),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	fallback, locker, err := OpenFallback(ctx, cfg.Fallback, logger)
	if err != nil {
		return nil, fmt.Errorf("open fallback store: %w", err)
	}

	metrics := observability.NewMetrics()
	opts := []storefront.Option{
		storefront.WithLogger(logger),
		storefront.WithServices(apiClient.Services()),
		storefront.WithFallback(fallback),
		storefront.WithLatePolicy(policy),
		storefront.WithKeepOpenOnInvalid(cfg.Engine.KeepOpenOnInvalid),
		storefront.WithMaxNotices(cfg.Engine.MaxNotices),
		storefront.WithLifecycleHooks(metrics.Hooks()),
		storefront.WithContact(actions.ContactInfo{
			Phone:    cfg.Contact.Phone,
			Telegram: cfg.Contact.Telegram,
			Email:    cfg.Contact.Email,
		}),
	}
	if locker != nil {
		opts = append(opts, storefront.WithLocker(locker))
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, storefront.WithLifecycleHooks(observability.AuditHooks(logger)))
	}

	client, err := storefront.New(opts...)
	if err != nil {
		if closer, ok := fallback.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		API:     apiClient,
		Metrics: metrics,
	}, nil
}

// Close drains tracked calls and releases the fallback store.
func (a *App) Close(ctx context.Context) error {
	return a.Client.Shutdown(ctx)
}
