package player

import (
	"errors"
	"math"
	"sync"
	"time"

	"soundcrate/logger"
	"soundcrate/model"
)

// ErrNoPlaybackURL is returned when a track has no resolvable stream URL.
var ErrNoPlaybackURL = errors.New("track has no playback URL")

const (
	// loadTimeout bounds how long the loading flag can stay set when the
	// element never reports readiness, e.g. on a stalled network.
	loadTimeout = 5 * time.Second
	// playFallback bounds how long a play request waits for canplay before
	// attempting playback anyway.
	playFallback = 2 * time.Second
)

// State is a snapshot of the engine's playback session.
type State struct {
	CurrentTrack *model.Track
	IsPlaying    bool
	IsLoading    bool
	Position     float64 // seconds
	Duration     float64 // seconds
	Volume       float64 // [0, 1]
	Playlist     []model.Track
	CurrentIndex int // -1 when nothing is selected
}

// Engine owns exactly one media element and a playlist cursor. All mutations
// go through its methods; the element's events are consumed by a single
// reducer goroutine and are the only writer of the playing/loading flags.
type Engine struct {
	mu      sync.Mutex
	element Element
	state   State

	// loadGen increments on every LoadTrack so stale watchdogs and play
	// fallback timers from a superseded load cannot clobber a newer one.
	loadGen uint64

	// pendingPlay suppresses overlapping play requests; cleared by the
	// element's play/pause/error events.
	pendingPlay bool
	// playOnReady asks the reducer to start playback on the next canplay.
	playOnReady bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewEngine creates an engine over the given element and starts consuming
// its events. The caller must Close the engine when the session ends.
func NewEngine(element Element) *Engine {
	e := &Engine{
		element: element,
		state: State{
			Volume:       1,
			CurrentIndex: -1,
		},
		done: make(chan struct{}),
	}
	go e.consumeEvents()
	return e
}

// consumeEvents applies element events to the state in arrival order.
func (e *Engine) consumeEvents() {
	for {
		select {
		case <-e.done:
			return
		case ev, ok := <-e.element.Events():
			if !ok {
				return
			}
			e.apply(ev)
		}
	}
}

func (e *Engine) apply(ev Event) {
	e.mu.Lock()

	switch ev.Type {
	case EventLoadStart:
		e.state.IsLoading = true

	case EventLoadedMetadata:
		e.state.Duration = ev.Duration
		e.state.IsLoading = false

	case EventCanPlay:
		e.state.IsLoading = false
		if e.playOnReady {
			e.playOnReady = false
			e.mu.Unlock()
			if err := e.element.Play(); err != nil {
				e.playFailed(err)
			}
			return
		}

	case EventPlay:
		e.pendingPlay = false
		e.playOnReady = false
		e.state.IsPlaying = true

	case EventPause:
		e.pendingPlay = false
		e.state.IsPlaying = false

	case EventEnded:
		// No auto-advance; the cursor stays on the finished track.
		e.state.IsPlaying = false

	case EventTimeUpdate:
		if !math.IsNaN(ev.Position) {
			e.state.Position = ev.Position
		}

	case EventError:
		e.pendingPlay = false
		e.playOnReady = false
		e.state.IsLoading = false
		e.state.IsPlaying = false
		logger.Error("[Player] media element error", logger.ErrorField(ev.Err))
	}

	e.mu.Unlock()
}

func (e *Engine) playFailed(err error) {
	logger.Error("[Player] playback request failed", logger.ErrorField(err))
	e.mu.Lock()
	e.pendingPlay = false
	e.state.IsPlaying = false
	e.mu.Unlock()
}

// LoadTrack points the element at a track's stream and begins buffering.
// It never auto-plays. A watchdog clears the loading flag if the element
// reports nothing within loadTimeout.
func (e *Engine) LoadTrack(track model.Track) error {
	if track.URL == "" {
		return ErrNoPlaybackURL
	}

	e.mu.Lock()
	e.loadGen++
	gen := e.loadGen
	t := track
	e.state.CurrentTrack = &t
	e.state.IsLoading = true
	e.state.IsPlaying = false
	e.state.Position = 0
	e.state.Duration = 0
	e.pendingPlay = false
	e.playOnReady = false
	e.mu.Unlock()

	e.element.SetSource(track.URL)
	e.element.Load()

	time.AfterFunc(loadTimeout, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.loadGen == gen && e.state.IsLoading {
			logger.Warn("[Player] load watchdog fired", logger.String("title", track.Title))
			e.state.IsLoading = false
		}
	})

	return nil
}

// Play requests playback of the loaded track. A request already in flight
// makes this a no-op. If the element has enough buffered data it plays
// immediately; otherwise playback starts on the element's canplay event,
// with a fallback timer that attempts to play anyway.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.state.CurrentTrack == nil || e.pendingPlay {
		e.mu.Unlock()
		return
	}
	e.pendingPlay = true
	gen := e.loadGen
	e.mu.Unlock()

	if e.element.ReadyState() >= ReadyCanPlay {
		if err := e.element.Play(); err != nil {
			e.playFailed(err)
		}
		return
	}

	e.mu.Lock()
	e.playOnReady = true
	e.mu.Unlock()

	time.AfterFunc(playFallback, func() {
		e.mu.Lock()
		stale := e.loadGen != gen || !e.playOnReady
		e.playOnReady = false
		e.mu.Unlock()
		if stale {
			return
		}
		// Best effort; a rejection is reported through element events.
		if err := e.element.Play(); err != nil {
			e.playFailed(err)
		}
	})
}

// Pause requests a pause. The playing flag is cleared by the element's
// pause event, not here.
func (e *Engine) Pause() {
	e.element.Pause()
}

// TogglePlayPause flips playback based on the element's own paused flag,
// not the engine's snapshot, so a stale snapshot cannot invert the action.
func (e *Engine) TogglePlayPause() {
	if e.element.Paused() {
		e.Play()
	} else {
		e.Pause()
	}
}

// SeekTo moves the position and mirrors it into the state immediately;
// seek is synchronous from the caller's perspective.
func (e *Engine) SeekTo(seconds float64) {
	e.element.Seek(seconds)
	e.mu.Lock()
	e.state.Position = seconds
	e.mu.Unlock()
}

// SetVolume clamps to [0, 1], applies it to the element, and mirrors it.
func (e *Engine) SetVolume(v float64) {
	clamped := math.Max(0, math.Min(1, v))
	e.element.SetVolume(clamped)
	e.mu.Lock()
	e.state.Volume = clamped
	e.mu.Unlock()
}

// SetPlaylist replaces the playlist and cursor. A valid start index loads
// that track without auto-playing; an invalid one resets the cursor to -1
// and loads nothing.
func (e *Engine) SetPlaylist(tracks []model.Track, startIndex int) {
	valid := startIndex >= 0 && startIndex < len(tracks)

	e.mu.Lock()
	e.state.Playlist = tracks
	if valid {
		e.state.CurrentIndex = startIndex
	} else {
		e.state.CurrentIndex = -1
	}
	e.mu.Unlock()

	if valid {
		if err := e.LoadTrack(tracks[startIndex]); err != nil {
			logger.Warn("[Player] could not load playlist track",
				logger.Int("index", startIndex), logger.ErrorField(err))
		}
	}
}

// PlayFromPlaylist replaces the playlist and loads the start track. Like
// SetPlaylist it never auto-plays; playback stays user-initiated.
func (e *Engine) PlayFromPlaylist(tracks []model.Track, startIndex int) {
	e.SetPlaylist(tracks, startIndex)
}

// SkipToNext advances the cursor and loads that track. At the end of the
// playlist it is a no-op; next does not wrap around.
func (e *Engine) SkipToNext() {
	e.mu.Lock()
	if len(e.state.Playlist) == 0 {
		e.mu.Unlock()
		return
	}
	next := e.state.CurrentIndex + 1
	if next >= len(e.state.Playlist) {
		e.mu.Unlock()
		return
	}
	e.state.CurrentIndex = next
	track := e.state.Playlist[next]
	e.mu.Unlock()

	if err := e.LoadTrack(track); err != nil {
		logger.Warn("[Player] could not load next track", logger.ErrorField(err))
	}
}

// SkipToPrevious retreats the cursor and loads that track, wrapping to the
// last track when at the start of the playlist.
func (e *Engine) SkipToPrevious() {
	e.mu.Lock()
	if len(e.state.Playlist) == 0 {
		e.mu.Unlock()
		return
	}
	prev := e.state.CurrentIndex - 1
	if prev < 0 {
		prev = len(e.state.Playlist) - 1
	}
	e.state.CurrentIndex = prev
	track := e.state.Playlist[prev]
	e.mu.Unlock()

	if err := e.LoadTrack(track); err != nil {
		logger.Warn("[Player] could not load previous track", logger.ErrorField(err))
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.state
	if e.state.CurrentTrack != nil {
		track := *e.state.CurrentTrack
		state.CurrentTrack = &track
	}
	state.Playlist = append([]model.Track(nil), e.state.Playlist...)
	return state
}

// Close stops the event reducer and releases the element.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.done)
		err = e.element.Close()
	})
	return err
}
