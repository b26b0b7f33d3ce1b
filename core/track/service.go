// Package track implements the upload, listing and deletion workflows
// that tie track records to their stored audio objects.
package track

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundcrate/core/metadata"
	"soundcrate/logger"
	"soundcrate/model"
	"soundcrate/repository"
)

var (
	// ErrTooLarge rejects a payload over the per-upload byte cap.
	ErrTooLarge = errors.New("track exceeds the upload size limit")
	// ErrQuotaExceeded rejects an upload when the owner is at the track cap.
	ErrQuotaExceeded = errors.New("track quota exceeded")
	// ErrNotFound marks a track id with no record.
	ErrNotFound = errors.New("track not found")
	// ErrForbidden marks an operation on a track owned by someone else.
	ErrForbidden = errors.New("track belongs to another user")
)

// ObjectStore is the object storage surface the service needs.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error
	Remove(ctx context.Context, paths []string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	PublicURL(path string) string
}

// DurationProber extracts a track duration in seconds from raw audio.
// Probing is best effort; a failure never blocks an upload.
type DurationProber interface {
	Probe(data []byte) (int, error)
}

// SessionCleaner clears per-user session state after account removal.
type SessionCleaner interface {
	Clear(ctx context.Context, userID int64) error
}

// Meta carries caller-supplied track metadata. Empty fields fall back to
// filename heuristics.
type Meta struct {
	Title    string
	Artist   string
	Duration int // seconds, 0 means unknown
}

// Service coordinates track records, stored objects and session state.
type Service struct {
	tracks   repository.TrackRepository
	users    repository.UserRepository
	store    ObjectStore
	prober   DurationProber
	sessions SessionCleaner

	maxBytes     int64
	maxTracks    int
	signedURLTTL time.Duration
}

// NewService wires the track workflows. prober and sessions may be nil.
func NewService(
	tracks repository.TrackRepository,
	users repository.UserRepository,
	store ObjectStore,
	prober DurationProber,
	sessions SessionCleaner,
	maxBytes int64,
	maxTracks int,
	signedURLTTL time.Duration,
) *Service {
	return &Service{
		tracks:       tracks,
		users:        users,
		store:        store,
		prober:       prober,
		sessions:     sessions,
		maxBytes:     maxBytes,
		maxTracks:    maxTracks,
		signedURLTTL: signedURLTTL,
	}
}

// Upload stores an audio payload and records the track. Steps run in a
// fixed order: size cap, quota, metadata, duration probe, object write,
// record insert. The first failure aborts; there is no rollback, so the
// object write always precedes the insert and a record never points at a
// missing object.
func (s *Service) Upload(ctx context.Context, userID int64, filename string, payload []byte, meta Meta) (*model.Track, error) {
	if int64(len(payload)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(payload), s.maxBytes)
	}

	count, err := s.tracks.CountTracksByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	if count >= s.maxTracks {
		return nil, fmt.Errorf("%w: %d tracks (limit %d)", ErrQuotaExceeded, count, s.maxTracks)
	}

	title, artist := meta.Title, meta.Artist
	if title == "" {
		artist, title = metadata.Extract(filename)
	}

	var duration *int
	if meta.Duration > 0 {
		d := meta.Duration
		duration = &d
	} else if s.prober != nil {
		if d, err := s.prober.Probe(payload); err != nil {
			logger.Warn("[Upload] duration probe failed",
				logger.String("filename", filename),
				logger.ErrorField(err))
		} else {
			duration = &d
		}
	}

	filePath := fmt.Sprintf("%d/%d_%s", userID, time.Now().UnixMilli(), filename)
	if err := s.store.Upload(ctx, filePath, payload, "audio/mpeg", false); err != nil {
		return nil, fmt.Errorf("failed to store audio object: %w", err)
	}

	track := &model.Track{
		UserID:   userID,
		Title:    title,
		Artist:   artist,
		Filename: filename,
		FilePath: filePath,
		Duration: duration,
	}
	id, err := s.tracks.CreateTrack(track)
	if err != nil {
		return nil, fmt.Errorf("failed to record track: %w", err)
	}
	track.ID = id

	logger.Info("[Upload] track stored",
		logger.Int64("userId", userID),
		logger.Int64("trackId", id),
		logger.String("path", filePath),
		logger.Int("size", len(payload)))
	return track, nil
}

// Delete removes a track's object and record. The object is removed first;
// if that fails the record is kept so the track stays visible and
// deletable.
func (s *Service) Delete(ctx context.Context, userID, trackID int64) error {
	track, err := s.tracks.GetTrackByID(trackID)
	if err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}
	if track == nil {
		return ErrNotFound
	}
	if track.UserID != userID {
		return ErrForbidden
	}

	if err := s.store.Remove(ctx, []string{track.FilePath}); err != nil {
		return fmt.Errorf("failed to remove audio object: %w", err)
	}

	if err := s.tracks.DeleteTrack(trackID); err != nil {
		return fmt.Errorf("failed to delete track record: %w", err)
	}

	logger.Info("[Delete] track removed",
		logger.Int64("userId", userID),
		logger.Int64("trackId", trackID))
	return nil
}

// List returns the user's tracks newest first, each with a playback URL
// when one can be resolved. URL resolution tries a signed URL, then the
// public URL; a track with neither is returned without a URL rather than
// failing the listing.
func (s *Service) List(ctx context.Context, userID int64) ([]*model.Track, error) {
	tracks, err := s.tracks.GetTracksByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	for _, t := range tracks {
		url, err := s.store.SignedURL(ctx, t.FilePath, s.signedURLTTL)
		if err != nil {
			logger.Warn("[List] signed URL failed, falling back",
				logger.Int64("trackId", t.ID),
				logger.ErrorField(err))
			url = s.store.PublicURL(t.FilePath)
		}
		t.URL = url
	}
	return tracks, nil
}

// DeleteAccount removes all of a user's data: stored objects, track
// records, then the user row. Session cleanup after the data is gone is
// best effort.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	paths, err := s.tracks.GetFilePathsByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to enumerate track objects: %w", err)
	}

	if len(paths) > 0 {
		if err := s.store.Remove(ctx, paths); err != nil {
			return fmt.Errorf("failed to remove audio objects: %w", err)
		}
	}

	if err := s.tracks.DeleteTracksByUserID(userID); err != nil {
		return fmt.Errorf("failed to delete track records: %w", err)
	}

	if err := s.users.DeleteUser(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Clear(ctx, userID); err != nil {
			logger.Warn("[DeleteAccount] session cleanup failed",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
		}
	}

	logger.Info("[DeleteAccount] account removed",
		logger.Int64("userId", userID),
		logger.Int("tracks", len(paths)))
	return nil
}
