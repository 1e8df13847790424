package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/stagelink/stagelink-api/internal/config"
	"github.com/stagelink/stagelink-api/internal/domain/auth"
	"github.com/stagelink/stagelink-api/internal/domain/contract"
	"github.com/stagelink/stagelink-api/internal/domain/notification"
	"github.com/stagelink/stagelink-api/internal/domain/schedule"
	"github.com/stagelink/stagelink-api/internal/domain/user"
	"github.com/stagelink/stagelink-api/internal/middleware"
	"github.com/stagelink/stagelink-api/internal/pkg/database"
	"github.com/stagelink/stagelink-api/internal/pkg/jwt"
	"github.com/stagelink/stagelink-api/internal/pkg/logger"
	pkgresponse "github.com/stagelink/stagelink-api/internal/pkg/response"
	"github.com/stagelink/stagelink-api/internal/realtime"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting StageLink API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)
	contractRepo := contract.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := realtime.NewHub(redis, realtime.SubscriberConfig{
		MaxRetries:  cfg.StreamMaxRetries,
		BaseBackoff: cfg.StreamBaseBackoff,
		MaxBackoff:  cfg.StreamMaxBackoff,
	})
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, redis)
	scheduleCache := schedule.NewCache(redis)
	scheduleService := schedule.NewService(scheduleRepo, scheduleCache)
	contractService := contract.NewService(contractRepo, userRepo, scheduleRepo, scheduleCache)
	notificationService := notification.NewService(notificationRepo)

	notificationService.SetRealtimePublisher(notification.NewWSPublisher(hub))
	contractService.SetNotificationService(notificationService)

	// ---------- Background jobs ----------
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	cleanupJob := notification.NewCleanupJob(notificationRepo, 90*24*time.Hour)
	go cleanupJob.Start(jobCtx, 6*time.Hour)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	contractHandler := contract.NewHandler(contractService)
	notificationHandler := notification.NewHandler(notificationService)
	wsHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (browser clients pass the token as a query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(wsHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status": "ok",
			"stream": hub.SubscriberState().String(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", authHandler.Routes(authMiddleware))

		r.Mount("/artists/me/schedule", scheduleHandler.OwnerRoutes(authMiddleware, middleware.RequireArtist()))
		r.Mount("/artists", scheduleHandler.BrowseRoutes(authMiddleware))

		r.Mount("/contracts", contractHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
