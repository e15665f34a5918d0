package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/postboard/postboard-be/internal/api"
	"github.com/postboard/postboard-be/internal/config"
	"github.com/postboard/postboard-be/internal/database"
	"github.com/postboard/postboard-be/internal/logger"
	"github.com/postboard/postboard-be/internal/monitoring"
	"github.com/postboard/postboard-be/internal/services"
	"github.com/postboard/postboard-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Set up database
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := database.Open(connectCtx, cfg.StoreDriver, cfg.DatabaseURL, cfg.DatabaseName)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize database")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(hub)
	userService := services.NewResourceService("user", database.UsersCollection, store.Users, eventService)
	postService := services.NewResourceService("post", database.PostsCollection, store.Posts, eventService)

	// Set up and run the background health monitor
	healthMonitor, err := monitoring.NewHealthMonitor(store, store.Driver(), cfg.HealthSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.HealthSchedule).Msg("Invalid health check schedule")
	}
	healthMonitor.Start()

	// Set up router
	router := api.NewRouter(cfg.CORSAllowedOrigins, hub, userService, postService, healthMonitor)

	// Set up server
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", store.Driver()).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	healthMonitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server exiting")
}
