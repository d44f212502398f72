package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/abdougueye/diiokko-tv-sub000/internal/api"
	"github.com/abdougueye/diiokko-tv-sub000/internal/config"
	"github.com/abdougueye/diiokko-tv-sub000/internal/database"
	"github.com/abdougueye/diiokko-tv-sub000/internal/fetch"
	"github.com/abdougueye/diiokko-tv-sub000/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, using environment variables")
	}

	cfg := config.Load()

	logLevel := zerolog.InfoLevel
	if cfg.Debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(logLevel).With().Timestamp().Str("component", "server").Logger()

	logger.Info().Msg("starting Diiokko TV API server")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Stores
	playlistStore := database.NewPlaylistStore(db)
	channelStore := database.NewChannelStore(db)
	movieStore := database.NewMovieStore(db)
	seriesStore := database.NewSeriesStore(db)
	episodeStore := database.NewEpisodeStore(db)
	categoryStore := database.NewCategoryStore(db)
	userStore := database.NewUserStore(db)

	// Ingestion pipeline
	catalog := database.NewCatalog(db, logger)
	fetcher := fetch.New(cfg.StagingDir, logger)
	refresher := services.NewRefresher(catalog, fetcher, logger)
	refresher.ExtraBlockedGroups = cfg.BlockedGroupsExtra

	services.InitializeDefaultServices(time.Duration(cfg.RefreshIntervalHours) * time.Hour)

	handler := api.NewHandler(
		playlistStore,
		channelStore,
		movieStore,
		seriesStore,
		episodeStore,
		categoryStore,
		userStore,
		refresher,
		services.GlobalScheduler,
		logger,
	)

	router := api.SetupRoutes(handler)

	// Playlist downloads and the initial synchronous refresh can take a
	// while on large providers, hence the generous timeouts.
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  180 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.ServerPort).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
