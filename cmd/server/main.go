package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/analytics"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/config"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/database"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/handlers"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/logger"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/middleware"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/repository"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/router"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/services"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/websocket"
)

func main() {
	cfg := config.Load()

	log, logCloser := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	log.Info("starting study planner", "env", cfg.Env, "timezone", cfg.Timezone.String())

	// ──── Storage ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		fatal("postgres connection failed", err)
	}
	defer pool.Close()

	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		fatal("redis connection failed", err)
	}
	defer redisClients.Close()

	if err := database.RunMigrations(context.Background(), pool, os.DirFS(cfg.MigrationsDir)); err != nil {
		fatal("database migration failed", err)
	}

	// ──── Repositories & services ────
	subjectRepo := repository.NewSubjectRepo(pool)
	studySessionRepo := repository.NewStudySessionRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)

	aggregator := analytics.NewAggregator(analytics.SystemClock{Location: cfg.Timezone})
	analyzer := analytics.NewAnalyzer()
	publisher := services.NewRedisPublisher(redisClients.Commands)

	subjectService := services.NewSubjectService(subjectRepo)
	studySessionService := services.NewStudySessionService(studySessionRepo, subjectRepo, publisher)
	taskService := services.NewTaskService(taskRepo, publisher)
	statsService := services.NewStatsService(studySessionService, subjectService, taskService, aggregator, analyzer)

	var chatModel services.ChatModel
	if cfg.GeminiAPIKey != "" {
		client, model, err := services.NewGeminiModel(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fatal("gemini client failed", err)
		}
		defer client.Close()
		chatModel = model
		log.Info("assistant connected to gemini", "model", cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, assistant runs offline")
	}
	assistantService := services.NewAssistantService(chatModel, taskService, cfg.GeminiConcurrent)

	// ──── HTTP ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	fallbackLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimitPerMinute)
	defer fallbackLimiter.Stop()
	limiter := middleware.NewRedisRateLimiter(redisClients.Commands, cfg.RateLimitPerMinute, fallbackLimiter)

	wsHub := websocket.NewHub(websocket.NewRedisSubscriber(redisClients.PubSub), jwtAuth, cfg.FrontendURL)
	defer wsHub.Close()

	r := router.New(
		jwtAuth,
		limiter,
		handlers.NewSubjectHandler(subjectService),
		handlers.NewStudySessionHandler(studySessionService),
		handlers.NewStatsHandler(statsService, cfg.DailyWindowDays, cfg.WeeklyWindowWeeks),
		handlers.NewTaskHandler(taskService),
		handlers.NewAssistantHandler(assistantService),
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	log.Info("server ready", "addr", server.Addr, "api", "/api/v1", "ws", "/api/v1/ws")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		fatal("server error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
