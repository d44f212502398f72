package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abdougueye/diiokko-tv-sub000/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) http.Handler {
	r := mux.NewRouter()

	// Root handler
	r.HandleFunc("/", handler.RootHandler).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Auth
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", handler.Logout).Methods("POST")
	api.HandleFunc("/auth/verify", handler.VerifyToken).Methods("GET")
	api.HandleFunc("/auth/status", handler.AuthStatus).Methods("GET")
	api.HandleFunc("/auth/setup", handler.CreateFirstUser).Methods("POST")

	// Playlists. Mutations are admin-only; regular users browse the catalog.
	api.HandleFunc("/playlists", handler.ListPlaylists).Methods("GET")
	api.Handle("/playlists", auth.RequireAdmin(http.HandlerFunc(handler.AddPlaylist))).Methods("POST")
	api.HandleFunc("/playlists/{id}", handler.GetPlaylist).Methods("GET")
	api.Handle("/playlists/{id}", auth.RequireAdmin(http.HandlerFunc(handler.UpdatePlaylist))).Methods("PUT")
	api.Handle("/playlists/{id}", auth.RequireAdmin(http.HandlerFunc(handler.DeletePlaylist))).Methods("DELETE")
	api.Handle("/playlists/{id}/refresh", auth.RequireAdmin(http.HandlerFunc(handler.RefreshPlaylist))).Methods("POST")
	api.HandleFunc("/playlists/{id}/account", handler.GetAccountStatus).Methods("GET")

	// Catalog
	api.HandleFunc("/playlists/{id}/channels", handler.ListChannels).Methods("GET")
	api.HandleFunc("/playlists/{id}/movies", handler.ListMovies).Methods("GET")
	api.HandleFunc("/playlists/{id}/series", handler.ListSeries).Methods("GET")
	api.HandleFunc("/playlists/{id}/categories", handler.ListCategories).Methods("GET")
	api.HandleFunc("/series/{id}/episodes", handler.ListEpisodes).Methods("GET")

	// M3U export for downstream players
	api.HandleFunc("/playlists/{id}/export.m3u", handler.ExportPlaylist).Methods("GET")

	// Watch progress
	api.HandleFunc("/movies/{id}/progress", handler.UpdateMovieProgress).Methods("PUT")
	api.HandleFunc("/episodes/{id}/progress", handler.UpdateEpisodeProgress).Methods("PUT")

	// Background services
	api.HandleFunc("/services", handler.GetServicesStatus).Methods("GET")

	// Enable CORS
	r.Use(corsMiddleware)

	// Logging middleware
	r.Use(handler.loggingMiddleware)

	// JWT session validation
	r.Use(auth.SessionMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
