package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/nagomi-dev/dayflow/internal/client"
	"github.com/nagomi-dev/dayflow/internal/config"
	"github.com/nagomi-dev/dayflow/internal/handler"
	"github.com/nagomi-dev/dayflow/internal/health"
	"github.com/nagomi-dev/dayflow/internal/infra/insightrecorder"
	"github.com/nagomi-dev/dayflow/internal/infra/narrativelimit"
	"github.com/nagomi-dev/dayflow/internal/infra/repository/postgres"
	"github.com/nagomi-dev/dayflow/internal/observability"
	"github.com/nagomi-dev/dayflow/internal/observability/metrics"
	"github.com/nagomi-dev/dayflow/internal/observability/middleware"
	"github.com/nagomi-dev/dayflow/internal/service/insights"
	"github.com/nagomi-dev/dayflow/internal/service/proposal"
	"github.com/nagomi-dev/dayflow/internal/service/resolve"
	"github.com/nagomi-dev/dayflow/internal/service/schedule"
	"github.com/nagomi-dev/dayflow/internal/service/validate"
	"github.com/nagomi-dev/dayflow/internal/service/velocity"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "dayflow"
	}
	env := os.Getenv("ENV")
	if env == "" {
		env = "dev"
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceName: serviceName,
		Version:     Version,
		Environment: env,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	scheduleMetrics, err := metrics.NewScheduleMetrics()
	if err != nil {
		slog.Error("failed to initialize schedule metrics", slog.String("error", err.Error()))
		return 1
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to create postgres pool", slog.String("error", err.Error()))
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect postgres",
			slog.String("event", "postgres.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	slog.Info("postgres connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	recorderCfg := insightrecorder.LoadConfig()
	insightRecorder, err := insightrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize insight recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := insightRecorder.Close(); err != nil {
			slog.Warn("failed to close insight recorder", slog.String("error", err.Error()))
		}
	}()

	scheduleRepo := postgres.NewScheduleRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	historyReader := postgres.NewHistoryReader(pool)

	scheduleService := schedule.NewService(
		scheduleRepo,
		taskRepo,
		resolve.NewResolver(),
		validate.NewValidator(),
		scheduleMetrics,
	)

	var narrative insights.NarrativeGenerator
	if cfg.Insights.NarrativeURL != "" {
		narrative = client.NewNarrativeClient(cfg.Insights.NarrativeURL, cfg.Insights.NarrativeTimeout)
		slog.Info("narrative client initialized",
			slog.String("url", cfg.Insights.NarrativeURL),
		)
	} else {
		slog.Warn("NARRATIVE_SERVICE_URL not set, insights will use fallback narratives only")
	}

	insightsService := insights.NewService(
		velocity.NewAnalyzer(historyReader, cfg.Insights.LookbackDays, cfg.Insights.RecentDays),
		proposal.NewGenerator(),
		narrative,
		narrativelimit.NewRedisBudget(redisClient, cfg.Insights.NarrativeCallsPerHour),
		insightRecorder,
		scheduleMetrics,
		cfg.Insights.NarrativeTimeout,
	)

	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	taskHandler := handler.NewTaskHandler(scheduleService)
	insightsHandler := handler.NewInsightsHandler(insightsService, scheduleService)

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(pool, redisClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1", handler.RequireUserID())
	{
		v1.PUT("/schedules/:day", scheduleHandler.HandleSaveSchedule)
		v1.GET("/schedules/:day", scheduleHandler.HandleGetSchedule)
		v1.PATCH("/schedules/:day/blocks/:label", scheduleHandler.HandleEditBlock)

		v1.POST("/sessions/:sessionID/tasks", taskHandler.HandleCreateTask)
		v1.GET("/sessions/:sessionID/tasks", taskHandler.HandleListTasks)
		v1.PATCH("/tasks/:taskID", taskHandler.HandleUpdateTask)
		v1.DELETE("/tasks/:taskID", taskHandler.HandleDeleteTask)

		v1.GET("/insights", insightsHandler.HandleGetInsights)
		v1.POST("/insights/apply", insightsHandler.HandleApplyProposal)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Int("insights_lookback_days", cfg.Insights.LookbackDays),
			slog.Int("narrative_calls_per_hour", cfg.Insights.NarrativeCallsPerHour),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
