package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/cache"
	"github.com/SAP-F-2025/ielts-trainer/internal/config"
	"github.com/SAP-F-2025/ielts-trainer/internal/events"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories/postgres"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/SAP-F-2025/ielts-trainer/pkg"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds the long-lived dependencies shared by commands
type app struct {
	cfg       *config.Config
	logger    utils.Logger
	db        *gorm.DB
	repo      repositories.Repository
	validator *validator.Validator
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLoggerForEnvironment(cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		repo:      postgres.NewRepository(db, postgres.Options{UseQuestionRPC: cfg.UsesQuestionRPC()}),
		validator: validator.New(),
	}, nil
}

func (a *app) slogger() *slog.Logger {
	return utils.ToSlogLogger(a.logger)
}

func (a *app) serviceLogger(component string) *services.ServiceLogger {
	return services.NewServiceLogger(a.slogger(), services.LogConfig{Service: "ielts-trainer", Component: component})
}

func (a *app) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// serverDeps is everything the HTTP server needs on top of app
type serverDeps struct {
	redis     *redis.Client
	publisher events.EventPublisher
	provider  auth.Provider
	practice  services.PracticeService
	collect   services.CollectionService
	dashboard services.DashboardService
}

func (a *app) newServerDeps(ctx context.Context) (*serverDeps, error) {
	logger := a.slogger()

	redisClient, err := pkg.NewRedisClient(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	publisher, err := a.cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(logger)
	}

	cacheService := cache.NewRedisCache(redisClient, logger)
	// The server never runs without auth: redis is required above, so the provider always builds.
	provider := auth.NewMagicLinkProvider(
		cacheService,
		auth.NewTokenIssuer(a.cfg.JWTSecret, a.cfg.SessionTTL),
		auth.NewMailer(a.cfg, logger),
		auth.NewProfileDirectory(a.repo.Profile()),
		auth.ProviderConfig{CodeTTL: a.cfg.SignInCodeTTL},
		logger,
	)

	questions := services.NewQuestionSource(a.repo.Question(), a.validator.Question(), logger)
	practiceEvents := services.NewPracticeEventService(publisher, logger)
	deps := services.PracticeDeps{
		Questions: questions,
		History:   a.repo.History(),
		Favorites: a.repo.Favorites(),
		WrongBook: a.repo.WrongBook(),
		Sequencer: cache.NewRedisRoundSequencer(redisClient, a.cfg.RoundTTL),
		Events:    practiceEvents,
		Validator: a.validator,
		Logger:    a.serviceLogger("practice"),
	}

	return &serverDeps{
		redis:     redisClient,
		publisher: publisher,
		provider:  provider,
		practice:  services.NewPracticeService(cache.NewRedisRoundStore(redisClient, a.cfg.RoundTTL, logger), deps),
		collect:   services.NewCollectionService(a.repo, questions, practiceEvents, a.serviceLogger("collections")),
		dashboard: services.NewDashboardService(a.repo, a.serviceLogger("dashboard")),
	}, nil
}

func (r *serverDeps) Close() error {
	return errors.Join(r.publisher.Close(), r.redis.Close())
}
