package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/glowdesk/modules/bookings"
	"github.com/glowdesk/glowdesk/modules/catalog"
	"github.com/glowdesk/glowdesk/modules/customers"
	"github.com/glowdesk/glowdesk/modules/salon"
	"github.com/glowdesk/glowdesk/pkg/authn"
	"github.com/glowdesk/glowdesk/pkg/bootstrap"
	"github.com/glowdesk/glowdesk/pkg/config"
	"github.com/glowdesk/glowdesk/pkg/httpserver"
	"github.com/glowdesk/glowdesk/pkg/logger"
	"github.com/glowdesk/glowdesk/pkg/pg"
	"github.com/glowdesk/glowdesk/pkg/redis"
	"github.com/glowdesk/glowdesk/pkg/requestid"
	"github.com/glowdesk/glowdesk/pkg/tenant"
	"github.com/glowdesk/glowdesk/pkg/tenantauth"
	"github.com/glowdesk/glowdesk/pkg/tenantdb"
)

type appConfig struct {
	AppEnv    string        `env:"APP_ENV" envDefault:"development"`
	LogLevel  slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat logger.Format `env:"LOG_FORMAT" envDefault:"json"`

	DB        pg.Config
	Redis     redis.Config
	HTTP      httpserver.Config
	Authn     authn.Config
	Bootstrap bootstrap.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithService("glowdesk", cfg.AppEnv),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	checks := []func(context.Context) error{pg.Healthcheck(pool)}

	// Tenant resolution: Postgres directory behind a short-TTL cache.
	// Redis when configured, in-process otherwise.
	var cache tenant.Cache
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		cache = tenant.NewRedisCache(client, "tenant:")
		checks = append(checks, redis.Healthcheck(client))
	} else {
		cache = tenant.NewMemoryCache(1024)
	}
	directory := tenant.NewCachedDirectory(tenant.NewPGDirectory(pool), cache, tenant.DefaultCacheTTL)

	auth, err := authn.New(cfg.Authn)
	if err != nil {
		return fmt.Errorf("init authn: %w", err)
	}

	conns := tenantdb.NewFactory(pool, log)
	guard := tenantauth.New(auth, directory, tenantauth.Connections(conns), log)

	provisioner := bootstrap.NewService(bootstrap.NewPGStorage(pool), log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, checks...))
	r.Post("/hooks/identity", bootstrap.Handler(cfg.Bootstrap, provisioner, log))

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/salon", salon.Router(guard, salon.NewPGStore()))
		api.Mount("/customers", customers.Router(guard, customers.NewPGStore()))
		api.Mount("/services", catalog.Router(guard, catalog.NewPGStore()))
		api.Mount("/bookings", bookings.Router(guard, bookings.NewPGStore()))
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, r)
}
