package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/abdougueye/diiokko-tv-sub000/internal/database"
	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
	"github.com/abdougueye/diiokko-tv-sub000/internal/playlist"
	"github.com/abdougueye/diiokko-tv-sub000/internal/services"
	"github.com/abdougueye/diiokko-tv-sub000/internal/xtream"
)

// Refresher runs a full ingestion cycle for one playlist.
type Refresher interface {
	Refresh(ctx context.Context, p *models.Playlist) (*models.RefreshStats, error)
}

type Handler struct {
	playlistStore *database.PlaylistStore
	channelStore  *database.ChannelStore
	movieStore    *database.MovieStore
	seriesStore   *database.SeriesStore
	episodeStore  *database.EpisodeStore
	categoryStore *database.CategoryStore
	userStore     *database.UserStore
	refresher     Refresher
	scheduler     *services.ServiceScheduler
	exporter      *playlist.Exporter
	logger        zerolog.Logger
}

func NewHandler(
	playlistStore *database.PlaylistStore,
	channelStore *database.ChannelStore,
	movieStore *database.MovieStore,
	seriesStore *database.SeriesStore,
	episodeStore *database.EpisodeStore,
	categoryStore *database.CategoryStore,
	userStore *database.UserStore,
	refresher Refresher,
	scheduler *services.ServiceScheduler,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		playlistStore: playlistStore,
		channelStore:  channelStore,
		movieStore:    movieStore,
		seriesStore:   seriesStore,
		episodeStore:  episodeStore,
		categoryStore: categoryStore,
		userStore:     userStore,
		refresher:     refresher,
		scheduler:     scheduler,
		exporter:      playlist.NewExporter(channelStore, movieStore, seriesStore, episodeStore),
		logger:        logger,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// RootHandler handles GET /
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    "Diiokko TV",
		"version": "1.0.0",
	})
}

// HealthCheck handles GET /api/v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPlaylists handles GET /api/v1/playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistStore.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// GetPlaylist handles GET /api/v1/playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	playlist, err := h.playlistStore.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

type addPlaylistRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	ServerURL string `json:"server_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	EPGURL    string `json:"epg_url"`
}

// AddPlaylist handles POST /api/v1/playlists. The playlist is stored, then
// ingested immediately; if the initial refresh fails the tentative row is
// removed again and the user gets a category-specific message.
func (h *Handler) AddPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name required")
		return
	}

	playlist := &models.Playlist{
		Name:   req.Name,
		Kind:   models.PlaylistKind(req.Kind),
		EPGURL: req.EPGURL,
		Active: true,
	}
	switch playlist.Kind {
	case models.PlaylistKindM3U:
		if req.URL == "" {
			respondError(w, http.StatusBadRequest, "url required for m3u playlists")
			return
		}
		playlist.URL = req.URL
	case models.PlaylistKindXtream:
		if req.ServerURL == "" || req.Username == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "server_url, username and password required for xtream playlists")
			return
		}
		playlist.ServerURL = req.ServerURL
		playlist.Username = req.Username
		playlist.Password = req.Password
	default:
		respondError(w, http.StatusBadRequest, "kind must be m3u or xtream")
		return
	}

	if err := h.playlistStore.Add(ctx, playlist); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats, err := h.refresher.Refresh(ctx, playlist)
	if err != nil {
		h.logger.Warn().Int64("playlist", playlist.ID).Err(err).Msg("initial refresh failed, removing playlist")
		if delErr := h.playlistStore.Delete(ctx, playlist.ID); delErr != nil {
			h.logger.Error().Int64("playlist", playlist.ID).Err(delErr).Msg("failed to remove playlist after failed refresh")
		}
		respondError(w, http.StatusBadGateway, services.UserMessage(err))
		return
	}

	playlist, getErr := h.playlistStore.Get(ctx, playlist.ID)
	if getErr != nil {
		respondError(w, http.StatusInternalServerError, getErr.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"playlist": playlist,
		"stats":    stats,
	})
}

// UpdatePlaylist handles PUT /api/v1/playlists/{id}
func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	playlist, err := h.playlistStore.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Name      *string `json:"name"`
		URL       *string `json:"url"`
		ServerURL *string `json:"server_url"`
		Username  *string `json:"username"`
		Password  *string `json:"password"`
		EPGURL    *string `json:"epg_url"`
		Active    *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		playlist.Name = *req.Name
	}
	if req.URL != nil {
		playlist.URL = *req.URL
	}
	if req.ServerURL != nil {
		playlist.ServerURL = *req.ServerURL
	}
	if req.Username != nil {
		playlist.Username = *req.Username
	}
	if req.Password != nil {
		playlist.Password = *req.Password
	}
	if req.EPGURL != nil {
		playlist.EPGURL = *req.EPGURL
	}
	if req.Active != nil {
		playlist.Active = *req.Active
	}

	if err := h.playlistStore.Update(ctx, playlist); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// DeletePlaylist handles DELETE /api/v1/playlists/{id}
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	if err := h.playlistStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "playlist deleted"})
}

// RefreshPlaylist handles POST /api/v1/playlists/{id}/refresh
func (h *Handler) RefreshPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	playlist, err := h.playlistStore.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats, err := h.refresher.Refresh(ctx, playlist)
	if err != nil {
		respondError(w, http.StatusBadGateway, services.UserMessage(err))
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetAccountStatus handles GET /api/v1/playlists/{id}/account. Only Xtream
// playlists expose provider account details.
func (h *Handler) GetAccountStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	playlist, err := h.playlistStore.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if playlist.Kind != models.PlaylistKindXtream {
		respondError(w, http.StatusBadRequest, "account status is only available for xtream playlists")
		return
	}

	client := xtream.NewClient()
	status, err := client.AccountStatus(ctx, playlist.ServerURL, playlist.Username, playlist.Password)
	if err != nil {
		respondError(w, http.StatusBadGateway, "could not fetch account status from provider")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// ListChannels handles GET /api/v1/playlists/{id}/channels
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	channels, err := h.channelStore.ListByPlaylist(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, channels)
}

// ListMovies handles GET /api/v1/playlists/{id}/movies
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	movies, err := h.movieStore.ListByPlaylist(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, movies)
}

// ListSeries handles GET /api/v1/playlists/{id}/series
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	series, err := h.seriesStore.ListByPlaylist(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// ListCategories handles GET /api/v1/playlists/{id}/categories?kind=live_tv
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	kind := models.ContentKind(r.URL.Query().Get("kind"))
	categories, err := h.categoryStore.ListByPlaylist(r.Context(), id, kind)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// ListEpisodes handles GET /api/v1/series/{id}/episodes
func (h *Handler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid series ID")
		return
	}

	episodes, err := h.episodeStore.ListBySeries(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, episodes)
}

type progressRequest struct {
	PositionSecs int64 `json:"position_secs"`
	DurationSecs int64 `json:"duration_secs"`
}

// UpdateMovieProgress handles PUT /api/v1/movies/{id}/progress
func (h *Handler) UpdateMovieProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid movie ID")
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.movieStore.UpdateProgress(r.Context(), id, req.PositionSecs, req.DurationSecs); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "progress saved"})
}

// UpdateEpisodeProgress handles PUT /api/v1/episodes/{id}/progress
func (h *Handler) UpdateEpisodeProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid episode ID")
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.episodeStore.UpdateProgress(r.Context(), id, req.PositionSecs, req.DurationSecs); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "progress saved"})
}

// ExportPlaylist handles GET /api/v1/playlists/{id}/export.m3u
func (h *Handler) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid playlist ID")
		return
	}

	if _, err := h.playlistStore.Get(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	if err := h.exporter.WriteM3U(r.Context(), w, id); err != nil {
		h.logger.Error().Int64("playlist", id).Err(err).Msg("m3u export failed")
	}
}

// GetServicesStatus handles GET /api/v1/services
func (h *Handler) GetServicesStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetAllStatus())
}
