// Package main - точка входа бота BotCamp Hub.
//
// Бот ведёт прогресс студентов буткемпа: начисляет XP с каскадом
// уровней, строит лидерборд, показывает пары на проверку и выполняет
// операторские команды инициализации когорты.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: обработчики чат-команд, HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/c4t-hub/botcamp-hub/config"

	// Application layer
	"github.com/c4t-hub/botcamp-hub/internal/application/command"
	"github.com/c4t-hub/botcamp-hub/internal/application/eventhandler"
	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/application/saga"

	// Infrastructure layer
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/external/gateway"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/messaging"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/persistence/postgres"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands"
	httpserver "github.com/c4t-hub/botcamp-hub/internal/interface/http"
	"github.com/c4t-hub/botcamp-hub/internal/interface/http/handlers"
)

func main() {
	// .env подхватывается только в разработке; в проде переменные
	// приходят из окружения
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting BotCamp Hub",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var rankingCache student.Cache
	var awardLock student.AwardLock = redis.NewLocalAwardLock()
	var cachePinger handlers.Pinger

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to local lock", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			cachePinger = redisCache
			if cfg.Features.IsEnabled(config.FeatureLeaderboardCache) {
				rankingCache = redis.NewRankingCache(redisCache)
			}
			if cfg.Features.IsEnabled(config.FeatureAwardLock) {
				awardLock = redis.NewAwardLock(redisCache)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	cohortRepo := postgres.NewCohortRepository(dbConn)
	registryRepo := postgres.NewRegistryRepository(dbConn)
	evaluationRepo := postgres.NewEvaluationRepository(dbConn)

	studentUow := postgres.NewStudentUnitOfWorkFactory(dbConn)
	cohortUow := postgres.NewCohortUnitOfWorkFactory(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusCfg := messaging.DefaultInMemoryEventBusConfig()
	localBusCfg.Logger = log

	// При наличии Redis и включённом REDIS_EVENT_BUS события уходят
	// через Pub/Sub во все инстансы; иначе остаёмся внутри процесса
	var eventBus messaging.EventBus
	if redisCache != nil && cfg.Redis.EventBus {
		eventBus, err = messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubBridge(redisCache),
			LocalBusConfig: localBusCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		log.Info("event bus: redis pub/sub", "channel", messaging.DefaultEventChannel)
	} else {
		eventBus = messaging.NewInMemoryEventBus(localBusCfg)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ GATEWAY КЛИЕНТА
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing gateway client...")
	gwConfig := gateway.DefaultClientConfig(cfg.Gateway.Token)
	gwConfig.BaseURL = cfg.Gateway.BaseURL
	gwConfig.Timeout = cfg.Gateway.RequestTimeout
	gwConfig.RetryAttempts = cfg.Gateway.MaxRetries
	gwConfig.RetryDelay = cfg.Gateway.RetryBaseDelay
	gwConfig.Logger = log
	gwConfig.Debug = cfg.App.Debug
	gwClient := gateway.NewClient(gwConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries, Sagas)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	var directory command.MemberDirectory
	if cfg.Features.IsEnabled(config.FeatureAwardDirectoryCheck) {
		directory = gwClient
	}

	setupSaga := saga.NewCohortSetupSaga(cohortRepo, cohortUow, gwClient, eventBus, saga.SetupLinks{
		CodeOfConductURL: cfg.Setup.CodeOfConductURL,
		SurvivalGuideURL: cfg.Setup.SurvivalGuideURL,
		ExamplePadletURL: cfg.Setup.ExamplePadletURL,
	})
	awardXPCmd := command.NewAwardXPHandler(studentUow, directory, awardLock, rankingCache, eventBus)

	leaderboardQuery := query.NewGetLeaderboardHandler(studentRepo, rankingCache)
	pairingsQuery := query.NewGetDailyPairingsHandler(evaluationRepo, studentRepo)
	headcountQuery := query.NewGetHeadcountHandler(gateway.NewVoiceRosterAdapter(gwClient))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	dispatcher := messaging.NewDispatcherBuilder(eventBus).
		WithLogger(log).
		WithDeadLetterQueue(100).
		Build()
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	if cfg.Features.IsEnabled(config.FeatureLevelUpAnnounce) {
		levelUpHandler := eventhandler.NewOnLevelUpHandler(
			studentRepo, gwClient, log, eventhandler.DefaultLevelUpConfig())
		// Процент раскатки применяется к конкретному студенту: анонсы
		// можно включать на части когорты через FEATURE_*-переменные
		announce := func(ev shared.Event) error {
			if up, ok := ev.(shared.LevelUpEvent); ok &&
				!cfg.Features.IsEnabledFor(config.FeatureLevelUpAnnounce, up.StudentID) {
				return nil
			}
			return levelUpHandler.Handle(ev)
		}
		if err := dispatcher.Register(shared.EventLevelUp, "level_up_announce", announce); err != nil {
			return fmt.Errorf("failed to register level-up handler: %w", err)
		}
	}

	cohortInitHandler := eventhandler.NewOnCohortInitializedHandler(rankingCache, log)
	if err := dispatcher.Register(shared.EventCohortInitialized, "ranking_cache_reset", cohortInitHandler.Handle); err != nil {
		return fmt.Errorf("failed to register cohort handler: %w", err)
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. СОЗДАНИЕ COMMAND LISTENER
	// ─────────────────────────────────────────────────────────────────────────
	var listener *commands.Listener
	if cfg.Listener.Enabled && cfg.Features.IsEnabled(config.FeatureCommandListener) {
		log.Info("initializing command listener...", "prefix", cfg.Listener.Prefix)

		listener, err = commands.NewListener(commands.ListenerConfig{
			Prefix: cfg.Listener.Prefix,
			Logger: log,
			Debug:  cfg.App.Debug,
		}, gwClient, commands.ListenerDependencies{
			SetupSaga:        setupSaga,
			AwardXPCmd:       awardXPCmd,
			LeaderboardQuery: leaderboardQuery,
			PairingsQuery:    pairingsQuery,
			HeadcountQuery:   headcountQuery,
		})
		if err != nil {
			return fmt.Errorf("failed to create listener: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	var httpServer *httpserver.Server
	if cfg.HTTP.Enabled && cfg.Features.IsEnabled(config.FeatureHTTPAPI) {
		log.Info("initializing HTTP server...")

		healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
		healthChecker.AddCheck("database", handlers.NewPingCheck(dbConn))
		healthChecker.AddCheck("gateway", handlers.NewPingCheck(gwClient))
		if cachePinger != nil {
			healthChecker.AddCheck("cache", handlers.NewPingCheck(cachePinger))
		}

		httpConfig := httpserver.DefaultConfig()
		httpConfig.Host = cfg.HTTP.Host
		httpConfig.Port = cfg.HTTP.Port
		httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
		httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
		httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
		httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
		httpConfig.EnableCORS = cfg.HTTP.EnableCORS
		httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
		httpConfig.AdminTokenHash = cfg.HTTP.AdminTokenHash

		httpServer = httpserver.NewServer(httpConfig, httpserver.Dependencies{
			LeaderboardQuery: leaderboardQuery,
			PairingsQuery:    pairingsQuery,
			StudentRepo:      studentRepo,
			CohortRepo:       cohortRepo,
			Registry:         registryRepo,
			DB:               dbConn,
			HealthChecker:    healthChecker,
		})
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	g, gctx := errgroup.WithContext(ctx)

	if httpServer != nil {
		g.Go(func() error {
			log.Info("starting HTTP server", "address", httpServer.Address())
			if err := httpServer.Start(); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	if listener != nil {
		g.Go(func() error {
			log.Info("starting command listener")
			if err := listener.Run(gctx); err != nil {
				return fmt.Errorf("command listener error: %w", err)
			}
			return nil
		})
	}

	if httpServer == nil && listener == nil {
		return errors.New("nothing to run: both HTTP server and listener are disabled")
	}

	log.Info("BotCamp Hub is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	// Сигнал завершения отменяет корневой контекст; группа дожидается
	// остановки всех сервисов
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service error", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
