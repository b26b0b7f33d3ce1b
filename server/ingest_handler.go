package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"soundcrate/core/ingest"
	"soundcrate/logger"
)

type ingestRequest struct {
	YouTubeURL string `json:"youtubeUrl"`
}

type ingestPayload struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Duration    int    `json:"duration"`
	Filename    string `json:"filename"`
	AudioData   string `json:"audioData"`
	Size        int64  `json:"size"`
	OriginalURL string `json:"originalUrl"`
}

type ingestResponse struct {
	Success bool           `json:"success"`
	Data    *ingestPayload `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9 _\-\.]`)

// ingestFilename derives a safe mp3 filename from the video title.
func ingestFilename(title string) string {
	name := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(title, ""))
	if name == "" {
		name = uuid.NewString()
	}
	return name + ".mp3"
}

// IngestYouTubeHandler converts a video URL into an audio payload the
// client can feed back through the upload endpoint.
func (h *APIHandler) IngestYouTubeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.YouTubeURL == "" {
		respondJSON(w, http.StatusBadRequest, ingestResponse{Error: "youtubeUrl is required"})
		return
	}

	result, err := h.fetcher.Fetch(r.Context(), req.YouTubeURL)
	if err != nil {
		status, message := ingestErrorStatus(err)
		logger.Warn("[Ingest] fetch failed",
			logger.Int64("userId", userID),
			logger.String("url", req.YouTubeURL),
			logger.ErrorField(err))
		respondJSON(w, status, ingestResponse{Error: message})
		return
	}

	logger.Info("[Ingest] audio acquired",
		logger.Int64("userId", userID),
		logger.String("title", result.Title),
		logger.Int64("size", result.Size))

	respondJSON(w, http.StatusOK, ingestResponse{
		Success: true,
		Data: &ingestPayload{
			Title:       result.Title,
			Artist:      result.Artist,
			Duration:    result.Duration,
			Filename:    ingestFilename(result.Title),
			AudioData:   base64.StdEncoding.EncodeToString(result.Data),
			Size:        result.Size,
			OriginalURL: req.YouTubeURL,
		},
	})
}

// ingestErrorStatus maps typed acquisition failures to client-facing
// responses. Unclassified failures stay generic.
func ingestErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid YouTube URL"
	case errors.Is(err, ingest.ErrVideoUnavailable):
		return http.StatusBadRequest, "Video is unavailable"
	case errors.Is(err, ingest.ErrAgeRestricted):
		return http.StatusBadRequest, "Video is age-restricted"
	case errors.Is(err, ingest.ErrRegionBlocked):
		return http.StatusBadRequest, "Video is not available in this region"
	case errors.Is(err, ingest.ErrPrivateVideo):
		return http.StatusBadRequest, "Video is private"
	case errors.Is(err, ingest.ErrBotCheck):
		return http.StatusBadRequest, "Source refused automated access, try again later"
	case errors.Is(err, ingest.ErrTooLong):
		return http.StatusBadRequest, "Video is longer than 10 minutes"
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusBadRequest, "Audio exceeds the 7 MB limit"
	default:
		return http.StatusInternalServerError, "Audio conversion failed"
	}
}
