// Package library keeps a session's track list in sync with the server
// and pushes it into the playback engine.
package library

import (
	"context"
	"fmt"
	"sync"

	"soundcrate/cache"
	"soundcrate/logger"
	"soundcrate/model"
)

// PushPolicy controls when a refreshed list is pushed into the engine.
type PushPolicy int

const (
	// PushOnChange pushes only when the track id sequence differs from
	// the last push. Playback position survives refreshes that change
	// nothing.
	PushOnChange PushPolicy = iota
	// PushAlways pushes every refresh result unconditionally.
	PushAlways
)

// TrackLister fetches the owner's tracks with resolved URLs.
type TrackLister interface {
	List(ctx context.Context, userID int64) ([]*model.Track, error)
}

// PlaylistSink receives the reconciled track list. The playback engine
// implements it.
type PlaylistSink interface {
	SetPlaylist(tracks []model.Track, startIndex int)
}

// Library is the session-scoped reconciliation store.
type Library struct {
	mu      sync.Mutex
	tracks  []model.Track
	userID  int64
	lister  TrackLister
	sink    PlaylistSink
	policy  PushPolicy
	cache   *cache.PlaylistCache
	lastIDs []int64
}

// Option configures a Library.
type Option func(*Library)

// WithPolicy overrides the default PushOnChange policy.
func WithPolicy(p PushPolicy) Option {
	return func(l *Library) { l.policy = p }
}

// WithSnapshotCache enables playlist snapshotting to Redis on refresh.
func WithSnapshotCache(c *cache.PlaylistCache) Option {
	return func(l *Library) { l.cache = c }
}

// NewLibrary creates a reconciliation store for one session.
func NewLibrary(lister TrackLister, sink PlaylistSink, opts ...Option) *Library {
	l := &Library{
		lister: lister,
		sink:   sink,
		policy: PushOnChange,
		userID: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Refresh fetches the current track list and reconciles it into the
// engine per the push policy.
func (l *Library) Refresh(ctx context.Context) error {
	l.mu.Lock()
	userID := l.userID
	l.mu.Unlock()
	if userID < 0 {
		return fmt.Errorf("no active session")
	}

	listed, err := l.lister.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to refresh library: %w", err)
	}

	tracks := make([]model.Track, 0, len(listed))
	ids := make([]int64, 0, len(listed))
	for _, t := range listed {
		tracks = append(tracks, *t)
		ids = append(ids, t.ID)
	}

	l.mu.Lock()
	l.tracks = tracks
	changed := !sameIDs(l.lastIDs, ids)
	push := l.policy == PushAlways || changed
	if push {
		l.lastIDs = ids
	}
	l.mu.Unlock()

	if push {
		l.sink.SetPlaylist(tracks, 0)
	}

	if l.cache != nil {
		if err := l.cache.Replace(ctx, userID, tracks); err != nil {
			logger.Warn("[Library] playlist snapshot failed",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
		}
	}

	logger.Debug("[Library] refreshed",
		logger.Int64("userId", userID),
		logger.Int("tracks", len(tracks)),
		logger.Bool("pushed", push))
	return nil
}

// HandleSessionChange reacts to login and logout. A non-nil user starts a
// session and refreshes; nil clears the list and the engine playlist.
func (l *Library) HandleSessionChange(ctx context.Context, user *model.User) error {
	if user == nil {
		l.mu.Lock()
		cleared := l.userID
		l.userID = -1
		l.tracks = nil
		l.lastIDs = nil
		l.mu.Unlock()

		l.sink.SetPlaylist(nil, -1)
		if l.cache != nil && cleared >= 0 {
			if err := l.cache.Clear(ctx, cleared); err != nil {
				logger.Warn("[Library] snapshot clear failed",
					logger.Int64("userId", cleared),
					logger.ErrorField(err))
			}
		}
		return nil
	}

	l.mu.Lock()
	l.userID = user.ID
	l.lastIDs = nil
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Tracks returns a copy of the current list.
func (l *Library) Tracks() []model.Track {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Track, len(l.tracks))
	copy(out, l.tracks)
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
