package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

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
	logger := zerolog.New(os.Stdout).Level(logLevel).With().Timestamp().Str("component", "worker").Logger()

	logger.Info().Msg("starting Diiokko TV refresh worker")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	playlistStore := database.NewPlaylistStore(db)
	catalog := database.NewCatalog(db, logger)
	fetcher := fetch.New(cfg.StagingDir, logger)
	refresher := services.NewRefresher(catalog, fetcher, logger)
	refresher.ExtraBlockedGroups = cfg.BlockedGroupsExtra

	refreshInterval := time.Duration(cfg.RefreshIntervalHours) * time.Hour
	services.InitializeDefaultServices(refreshInterval)

	workerCtx, workerCancel := context.WithCancel(context.Background())

	// Worker: periodic playlist refresh
	go func() {
		logger.Info().Dur("interval", refreshInterval).Msg("playlist refresh worker started")

		refreshAll := func() {
			services.GlobalScheduler.MarkRunning(services.ServicePlaylistRefresh)
			err := refreshActivePlaylists(workerCtx, playlistStore, refresher, logger)
			services.GlobalScheduler.MarkComplete(services.ServicePlaylistRefresh, err, refreshInterval)
		}

		// Run immediately on startup
		refreshAll()

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				refreshAll()
			}
		}
	}()

	// Worker: staging cleanup. Crashed refreshes can leave staging files
	// behind; anything older than an hour is orphaned.
	go func() {
		interval := 6 * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				services.GlobalScheduler.MarkRunning(services.ServiceStagingCleanup)
				err := cleanupStaging(cfg.StagingDir, time.Hour, logger)
				services.GlobalScheduler.MarkComplete(services.ServiceStagingCleanup, err, interval)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	workerCancel()
}

// refreshActivePlaylists refreshes every active playlist in turn. One failing
// playlist does not stop the others; its failure is recorded on the playlist
// row so the UI can surface it.
func refreshActivePlaylists(ctx context.Context, store *database.PlaylistStore, refresher *services.Refresher, logger zerolog.Logger) error {
	playlists, err := store.ListActive(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for i, p := range playlists {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		services.GlobalScheduler.UpdateProgress(services.ServicePlaylistRefresh, i, len(playlists), p.Name)

		if _, err := refresher.Refresh(ctx, p); err != nil {
			logger.Warn().Int64("playlist", p.ID).Str("name", p.Name).Err(err).Msg("scheduled refresh failed")
			// Record the failure without touching the existing catalog rows.
			if saveErr := store.SaveError(ctx, p.ID, services.UserMessage(err)); saveErr != nil {
				logger.Error().Int64("playlist", p.ID).Err(saveErr).Msg("failed to record refresh error")
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	services.GlobalScheduler.UpdateProgress(services.ServicePlaylistRefresh, len(playlists), len(playlists), "")
	return firstErr
}

// cleanupStaging removes staging files older than maxAge.
func cleanupStaging(dir string, maxAge time.Duration, logger zerolog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "playlist-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("cleaned up orphaned staging files")
	}
	return nil
}
