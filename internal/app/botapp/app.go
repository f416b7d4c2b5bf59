package botapp

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/config"
	"github.com/ivankudzin/groupguard/internal/infra/telegram"
	"github.com/ivankudzin/groupguard/internal/repo/postgres"
	redisrepo "github.com/ivankudzin/groupguard/internal/repo/redis"
	"github.com/ivankudzin/groupguard/internal/services/protection"
	"github.com/ivankudzin/groupguard/internal/services/roles"
	"github.com/ivankudzin/groupguard/internal/services/settings"
)

// App wires the stores, services and the telegram client together and
// owns their lifecycle.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	rdb    *goredis.Client
	tg     *telegram.Client

	protectionService *protection.Service
	settingsService   *settings.Service
	rolesService      *roles.Service
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	app := &App{cfg: cfg, logger: logger, pool: pool, rdb: rdb}

	app.tg, err = telegram.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeoutSeconds, logger, app.routeUpdate)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	policyRepo := postgres.NewPolicyRepo(pool, logger)
	statusRepo := redisrepo.NewUserStatusRepo(rdb)

	app.rolesService = roles.NewService(app.tg, statusRepo, logger)
	enforcer := protection.NewEnforcer(app.tg, statusRepo, cfg.Protection.MuteDuration, logger)
	app.protectionService = protection.NewService(
		policyRepo,
		app.rolesService,
		enforcer,
		protection.Config{EditGrace: cfg.Protection.EditGrace},
		logger,
	)
	app.settingsService = settings.NewService(policyRepo, statusRepo, app.rolesService, logger)

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()
	return a.tg.Start(ctx)
}

func (a *App) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("close redis", zap.Error(err))
		}
	}
}
