// Package server exposes the HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"soundcrate/cache"
	"soundcrate/config"
	"soundcrate/core/auth"
	"soundcrate/core/ingest"
	"soundcrate/core/track"
	"soundcrate/logger"
	"soundcrate/repository"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// APIHandler carries the dependencies of all HTTP handlers.
type APIHandler struct {
	trackService *track.Service
	userRepo     repository.UserRepository
	fetcher      ingest.Fetcher
	playlists    *cache.PlaylistCache
	cfg          *config.Config
}

// NewAPIHandler wires the HTTP layer.
func NewAPIHandler(
	trackService *track.Service,
	userRepo repository.UserRepository,
	fetcher ingest.Fetcher,
	playlists *cache.PlaylistCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackService: trackService,
		userRepo:     userRepo,
		fetcher:      fetcher,
		playlists:    playlists,
		cfg:          cfg,
	}
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// AuthMiddleware checks for a valid bearer token and stashes the caller's
// identity into the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, emailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// requireUser resolves the caller or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("[Auth] request without user context", logger.ErrorField(err))
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return userID, true
}
