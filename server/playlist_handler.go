package server

import (
	"encoding/json"
	"net/http"

	"soundcrate/logger"
	"soundcrate/model"
)

// GetPlaylistHandler returns the caller's cached playlist snapshot.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.playlists.Get(r.Context(), userID)
	if err != nil {
		logger.Error("[Playlist] snapshot read failed",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to read playlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"playlist": items})
}

type replacePlaylistRequest struct {
	Tracks []model.Track `json:"tracks"`
}

// ReplacePlaylistHandler overwrites the caller's playlist snapshot.
func (h *APIHandler) ReplacePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req replacePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.playlists.Replace(r.Context(), userID, req.Tracks); err != nil {
		logger.Error("[Playlist] snapshot replace failed",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store playlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
