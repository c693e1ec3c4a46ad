package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/marathonfantasy/internal/athlete"
	"github.com/dmitrymomot/marathonfantasy/internal/game"
	"github.com/dmitrymomot/marathonfantasy/internal/handler"
	"github.com/dmitrymomot/marathonfantasy/internal/session"
	"github.com/dmitrymomot/marathonfantasy/pkg/config"
	"github.com/dmitrymomot/marathonfantasy/pkg/environment"
	"github.com/dmitrymomot/marathonfantasy/pkg/httpserver"
	"github.com/dmitrymomot/marathonfantasy/pkg/logger"
	"github.com/dmitrymomot/marathonfantasy/pkg/pg"
	"github.com/dmitrymomot/marathonfantasy/pkg/ratelimit"
	"github.com/dmitrymomot/marathonfantasy/pkg/redis"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"marathonfantasy"`

	// RedisEnabled switches the rate limiter to a shared Redis backend.
	RedisEnabled bool `env:"REDIS_ENABLED" envDefault:"false"`

	// CreateLimit caps session creations per client IP per window.
	CreateLimit  int           `env:"SESSION_CREATE_LIMIT" envDefault:"20"`
	CreateWindow time.Duration `env:"SESSION_CREATE_WINDOW" envDefault:"1h"`

	HTTP    httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Session session.Config
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	env := environment.Parse(cfg.Env)

	log := logger.New(logger.WithEnvironment(env, cfg.Service))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	// Secure cookies follow the environment unless overridden explicitly
	if env.ProductionLike() {
		cfg.Session.SecureCookies = true
	}

	games := game.NewPGStore(pool)
	sessions := session.New(session.NewPGStore(pool), cfg.Session,
		session.WithGameRegistrar(games),
		session.WithLogger(log),
	)

	healthchecks := []handler.Healthcheck{
		{Name: "postgres", Probe: pg.Healthcheck(pool)},
	}

	var limiterStore ratelimit.Store
	if cfg.RedisEnabled {
		redisClient, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		limiterStore = ratelimit.NewRedisStore(redisClient, "mf")
		healthchecks = append(healthchecks, handler.Healthcheck{
			Name: "redis", Probe: redis.Healthcheck(redisClient),
		})
	} else {
		memStore := ratelimit.NewMemoryStore(5 * time.Minute)
		defer func() { _ = memStore.Close() }()
		limiterStore = memStore
	}

	limiter, err := ratelimit.NewLimiter(limiterStore, cfg.CreateLimit, cfg.CreateWindow)
	if err != nil {
		return err
	}

	router := handler.Router(handler.Options{
		Sessions:      sessions,
		Games:         games,
		Athletes:      athlete.NewPGStore(pool),
		Logger:        log,
		Env:           env,
		CreateLimiter: limiter,
		Healthchecks:  healthchecks,
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, router)
}
