// Command example runs a small relay-backed API server. Configuration is
// loaded from config.yaml (optional) with RELAY_-prefixed environment
// variables layered on top, e.g. RELAY_SERVER_ADDR or RELAY_REDIS_URL.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/pkg/cache"
	"github.com/relaykit/relay/pkg/limiter"
	"github.com/relaykit/relay/pkg/logger"
	"github.com/relaykit/relay/pkg/payload"
	redisconn "github.com/relaykit/relay/pkg/redis"
	"github.com/relaykit/relay/pkg/token"
)

type config struct {
	Server struct {
		Addr string `koanf:"addr"`
	} `koanf:"server"`
	Redis struct {
		URL string `koanf:"url"`
	} `koanf:"redis"`
	Auth struct {
		Secret string `koanf:"secret"`
	} `koanf:"auth"`
	Sentry struct {
		DSN         string `koanf:"dsn"`
		Environment string `koanf:"environment"`
	} `koanf:"sentry"`
}

func loadConfig() (*config, error) {
	k := koanf.New(".")

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("RELAY_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RELAY_")), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.addr") {
		k.Set("server.addr", ":8080")
	}

	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	}, relay.RequestIDExtractor())

	ctx := context.Background()

	// Redis-backed cache and limiter when a URL is configured, in-process
	// backends otherwise.
	var (
		cacher relay.Cacher
		limits relay.RateLimiter
	)
	if cfg.Redis.URL != "" {
		client := redisconn.MustOpen(ctx, cfg.Redis.URL)
		defer client.Close()
		cacher = relay.NewCacheStore(cache.NewRedis[relay.CachedResponse](client, nil, cache.WithPrefix("responses")))
		limits = limiter.NewRedis(client, "buckets")
	} else {
		mem := cache.NewMemory[relay.CachedResponse](cache.WithCleanupInterval(30 * time.Second))
		defer mem.Close()
		cacher = relay.NewCacheStore(mem)
		memLimiter := limiter.NewMemory(time.Minute)
		defer memLimiter.Close()
		limits = memLimiter
	}

	opts := []relay.Option{
		relay.WithPayloadValidator(payload.New()),
		relay.WithRateLimiter(limits),
		relay.WithCacher(cacher),
		relay.WithLogger(log),
	}
	if cfg.Auth.Secret != "" {
		opts = append(opts, relay.WithAuthenticator(token.MustNewVerifier(cfg.Auth.Secret)))
	}

	d := relay.New(opts...)

	routes := []*relay.Route{
		relay.NewRoute("/users/:id", getUser,
			relay.WithValidation(relay.Schema{
				"id": {Type: payload.Int, Required: true, Rules: "min=1"},
			}),
			relay.WithRateLimit(relay.RateLimitConfig{Max: 60, Window: time.Minute}),
			relay.WithCache(time.Minute, false),
		),
		relay.NewRoute("/echo", echo),
		relay.NewNamedRoute("ping", ping),
	}
	if cfg.Auth.Secret != "" {
		routes = append(routes, relay.NewRoute("/me", me,
			relay.WithAuth(relay.AuthConfig{}),
			relay.WithCache(30*time.Second, true),
		))
	}
	d.MustRegister(routes...)

	// Name-addressed routes stay callable without a transport request.
	if resp, err := d.Call(ctx, "ping", nil); err == nil {
		log.Info("self-check", slog.Any("pong", resp.Body))
	}

	log.Info("listening", slog.String("addr", cfg.Server.Addr))
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           relay.NewHTTPHandler(d, relay.WithHTTPLogger(log)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getUser(_ context.Context, p map[string]any) (any, error) {
	id := p["id"].(int64)
	if id > 1000 {
		return nil, relay.ErrNotFound(fmt.Sprintf("user %d not found", id))
	}
	return map[string]any{"id": id, "name": fmt.Sprintf("user-%d", id)}, nil
}

func echo(_ context.Context, p map[string]any) (any, error) {
	return p, nil
}

func ping(context.Context, map[string]any) (any, error) {
	return "pong", nil
}

func me(_ context.Context, p map[string]any) (any, error) {
	return map[string]any{"payload": p}, nil
}
