package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"soundcrate/core/track"
	"soundcrate/logger"
)

// GetTracksHandler lists the caller's tracks with resolved playback URLs.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tracks, err := h.trackService.List(r.Context(), userID)
	if err != nil {
		logger.Error("[Tracks] listing failed",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

// UploadTrackHandler accepts a multipart audio upload.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Parse limit leaves headroom over the payload cap for the form framing.
	if err := r.ParseMultipartForm(h.cfg.MaxTrackBytes + (1 << 20)); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("trackFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "trackFile field is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".mp3" {
		respondError(w, http.StatusBadRequest, "Only mp3 uploads are supported")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxTrackBytes+1))
	if err != nil {
		logger.Error("[Upload] failed to read payload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	meta := track.Meta{
		Title:  r.FormValue("title"),
		Artist: r.FormValue("artist"),
	}
	if d := r.FormValue("duration"); d != "" {
		if seconds, err := strconv.Atoi(d); err == nil && seconds > 0 {
			meta.Duration = seconds
		}
	}

	created, err := h.trackService.Upload(r.Context(), userID, header.Filename, payload, meta)
	if err != nil {
		switch {
		case errors.Is(err, track.ErrTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "Track exceeds the 7 MB limit")
		case errors.Is(err, track.ErrQuotaExceeded):
			respondError(w, http.StatusForbidden, "Track limit reached, delete a track first")
		default:
			logger.Error("[Upload] failed",
				logger.Int64("userId", userID),
				logger.String("filename", header.Filename),
				logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Upload failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"track": created})
}

// DeleteTrackHandler removes one of the caller's tracks.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid track id")
		return
	}

	if err := h.trackService.Delete(r.Context(), userID, trackID); err != nil {
		switch {
		case errors.Is(err, track.ErrNotFound):
			respondError(w, http.StatusNotFound, "Track not found")
		case errors.Is(err, track.ErrForbidden):
			respondError(w, http.StatusForbidden, "Track belongs to another user")
		default:
			logger.Error("[Delete] failed",
				logger.Int64("userId", userID),
				logger.Int64("trackId", trackID),
				logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Delete failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
