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

	"github.com/clubops/session-system/config"
	"github.com/clubops/session-system/db"
	"github.com/clubops/session-system/handlers"
	"github.com/clubops/session-system/live"
	"github.com/clubops/session-system/metrics"
	"github.com/clubops/session-system/push"
	"github.com/clubops/session-system/repositories"
	"github.com/clubops/session-system/routes"
	"github.com/clubops/session-system/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established")

	// Репозитории.
	eventRepo := repositories.NewPostgresEventRepository(database)
	playerRepo := repositories.NewPostgresPlayerRepository(database)
	rsvpRepo := repositories.NewPostgresRsvpRepository(database)
	teamRepo := repositories.NewPostgresTeamRepository(database)
	triggerRepo := repositories.NewPostgresTriggerLogRepository(database)
	subRepo := repositories.NewPostgresSubscriptionRepository(database)

	m := metrics.New("session_system")

	hub := live.NewHub(logger)
	go hub.Run()

	sender := push.NewWebhookSender(cfg.PushTimeout)

	// Сервисы.
	eventService := services.NewEventService(eventRepo, rsvpRepo, playerRepo)
	rsvpService := services.NewRsvpService(rsvpRepo)
	playerService := services.NewPlayerService(playerRepo, logger)
	subscriptionService := services.NewSubscriptionService(subRepo, playerRepo, logger)
	sqlDB := repositories.NewSQLDatabase(database)
	teamService := services.NewTeamService(sqlDB, teamRepo, playerRepo, rsvpRepo, eventRepo, hub, logger)
	ratingService := services.NewRatingService(sqlDB, teamRepo, playerRepo, eventRepo, cfg.DefaultKFactor, m, logger)
	scheduleService := services.NewScheduleService(eventRepo, services.DefaultTemplates(), cfg.Location, m, logger)
	dispatchService := services.NewDispatchService(
		eventRepo, rsvpRepo, triggerRepo, subRepo,
		sender, teamService,
		services.DispatchConfig{
			PollInterval: cfg.PollInterval,
			Location:     cfg.Location,
			TeamStrategy: cfg.TeamStrategy,
			TeamSize:     cfg.DefaultTeamSize,
		},
		m, logger,
	)

	// Обработчики.
	eventHandler := handlers.NewEventHandler(eventService, rsvpService, teamService)
	adminHandler := handlers.NewAdminHandler(scheduleService, dispatchService, teamService, ratingService, playerService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	wsHandler := handlers.NewWebSocketHandler(hub, logger)

	router := routes.SetupRoutes(eventHandler, adminHandler, subscriptionHandler, wsHandler)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Планировщик повторяющихся событий: первый прогон сразу, дальше по тикеру.
	go func() {
		runSchedule := func() {
			ctx, cancel := context.WithTimeout(rootCtx, time.Minute)
			defer cancel()
			if err := scheduleService.RunScheduleCycle(ctx, time.Now()); err != nil {
				logger.Error("schedule cycle failed", slog.Any("error", err))
			}
		}
		runSchedule()

		ticker := time.NewTicker(cfg.ScheduleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runSchedule()
			case <-rootCtx.Done():
				return
			}
		}
	}()

	// Диспетчер уведомлений: опрос каждые PollInterval минут.
	go func() {
		runDispatch := func() {
			ctx, cancel := context.WithTimeout(rootCtx, cfg.PollInterval)
			defer cancel()
			if err := dispatchService.RunCycle(ctx, time.Now()); err != nil {
				logger.Error("dispatch cycle failed", slog.Any("error", err))
			}
		}
		runDispatch()

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runDispatch()
			case <-rootCtx.Done():
				return
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		logger.Info("starting server", slog.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
