// Package botapp wires storage, services and the Telegram transport into the
// running bot process.
package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/config"
	s3infra "github.com/ivankudzin/classibot/internal/infra/s3"
	tginfra "github.com/ivankudzin/classibot/internal/infra/telegram"
	"github.com/ivankudzin/classibot/internal/jobs/autopost"
	pgrepo "github.com/ivankudzin/classibot/internal/repo/postgres"
	redisrepo "github.com/ivankudzin/classibot/internal/repo/redis"
	"github.com/ivankudzin/classibot/internal/services/content"
	"github.com/ivankudzin/classibot/internal/services/imagehash"
	mediasvc "github.com/ivankudzin/classibot/internal/services/media"
	modsvc "github.com/ivankudzin/classibot/internal/services/moderation"
	"github.com/ivankudzin/classibot/internal/services/publish"
	"github.com/ivankudzin/classibot/internal/services/rate"
	"github.com/ivankudzin/classibot/internal/services/submission"
)

type App struct {
	cfg    config.Config
	logger *zap.Logger

	postgres *pgxpool.Pool
	redis    *goredis.Client
	bot      *tginfra.Bot
	router   *Router
	autopost *autopost.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if strings.TrimSpace(cfg.Bot.Token) == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pgrepo.InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	bot, err := tginfra.NewBot(cfg.Bot.Token)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Rate limiting degrades to open; everything else works without redis.
		logger.Warn("redis unavailable, rate limiting degraded", zap.Error(err))
	}

	userRepo := pgrepo.NewUserRepo(pool)
	listingRepo := pgrepo.NewListingRepo(pool)
	queueRepo := pgrepo.NewQueueRepo(pool)
	blacklistRepo := pgrepo.NewBlacklistRepo(pool)
	scheduleRepo := pgrepo.NewScheduleRepo(pool)
	badWordsRepo := pgrepo.NewBadWordsRepo(pool)
	auditRepo := pgrepo.NewAuditRepo(pool)
	rateRepo := redisrepo.NewRateRepo(redisClient)

	filter, err := buildFilter(ctx, badWordsRepo, cfg.Intake.BadWords)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	archive := buildArchive(cfg.S3, bot, logger)

	flow := submission.NewFlow(submission.Deps{
		Categories: cfg.Intake.Categories,
		Districts:  cfg.Intake.Districts,
		MaxPhotos:  cfg.Intake.MaxPhotos,
		Listings:   listingRepo,
		Blacklist:  blacklistRepo,
		Limiter:    rate.NewLimiter(rateRepo, cfg.Intake.AntifloodWindow, cfg.Intake.RateLimitPerMinute),
		Filter:     filter,
		Hasher:     imagehash.NewHasher(imagehash.DefaultSize),
		Downloader: bot,
		Logger:     logger,
	})

	moderationService := modsvc.NewService(listingRepo, queueRepo, blacklistRepo, auditRepo, logger)
	publishService := publish.NewService(bot, logger)

	autopostJob := autopost.New(
		listingRepo,
		scheduleRepo,
		publishService,
		cfg.Autopost.TargetChatIDs,
		cfg.Autopost.BackupChatIDs,
		cfg.Autopost.DefaultInterval,
		logger,
	)

	router := NewRouter(RouterDeps{
		Config:     cfg,
		Bot:        bot,
		Users:      userRepo,
		Listings:   listingRepo,
		Queue:      queueRepo,
		BadWords:   badWordsRepo,
		Flow:       flow,
		Moderation: moderationService,
		Filter:     filter,
		Archive:    archive,
		Logger:     logger,
	})

	return &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		bot:      bot,
		router:   router,
		autopost: autopostJob,
	}, nil
}

// buildFilter merges the configured terms into the table, then loads the full
// set back so runtime additions from previous runs stay in force.
func buildFilter(ctx context.Context, repo *pgrepo.BadWordsRepo, configured []string) (*content.Filter, error) {
	if err := repo.Seed(ctx, configured); err != nil {
		return nil, fmt.Errorf("seed bad words: %w", err)
	}
	words, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bad words: %w", err)
	}
	return content.NewFilter(words), nil
}

// buildArchive returns a disabled archive when no S3 endpoint is configured.
func buildArchive(cfg config.S3Config, bot *tginfra.Bot, logger *zap.Logger) *mediasvc.Archive {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		logger.Info("s3 endpoint is empty, photo archive disabled")
		return mediasvc.NewArchive(nil, nil, logger)
	}

	client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		logger.Warn("s3 client init failed, photo archive disabled", zap.Error(err))
		return mediasvc.NewArchive(nil, nil, logger)
	}

	return mediasvc.NewArchive(mediasvc.NewS3Storage(client, cfg.Bucket), bot, logger)
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot started",
		zap.String("env", a.cfg.Env),
		zap.Int("targets", len(a.cfg.Autopost.TargetChatIDs)))

	if err := a.autopost.Seed(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.bot.Listen(ctx, a.router.Handlers())
	}()
	go func() {
		errCh <- a.runAutopostLoop(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runAutopostLoop(ctx context.Context) error {
	interval := a.cfg.Autopost.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.autopost.Run(ctx); err != nil {
				a.logger.Error("autopost pass failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
