// Package player drives a single streaming media element from asynchronous
// UI triggers, reconciling caller intent with the element's own lifecycle.
package player

// Ready states, in increasing order of buffered data. An element at
// ReadyCanPlay or above can start playback without further buffering.
const (
	ReadyNothing  = 0
	ReadyMetadata = 1
	ReadyCurrent  = 2
	ReadyCanPlay  = 3
	ReadyEnough   = 4
)

// EventType identifies an asynchronous media element event.
type EventType string

const (
	EventLoadStart      EventType = "loadstart"
	EventLoadedMetadata EventType = "loadedmetadata"
	EventCanPlay        EventType = "canplay"
	EventPlay           EventType = "play"
	EventPause          EventType = "pause"
	EventEnded          EventType = "ended"
	EventTimeUpdate     EventType = "timeupdate"
	EventError          EventType = "error"
)

// Event is emitted by an Element as its internal state changes. Events are
// the authoritative source for playing/loading state; the engine never
// mutates those flags optimistically on behalf of a caller.
type Event struct {
	Type     EventType
	Position float64 // seconds, for timeupdate
	Duration float64 // seconds, for loadedmetadata
	Err      error   // for error events
}

// Element models one streaming media element. Implementations deliver events
// on a single channel in occurrence order; the engine is the only consumer.
type Element interface {
	// SetSource assigns the stream URL. Takes effect on the next Load.
	SetSource(url string)
	// Load begins fetching the current source.
	Load()
	// Play requests playback. The transition to playing is reported via an
	// EventPlay, not by this call returning.
	Play() error
	// Pause requests a pause; the transition is reported via an EventPause.
	Pause()
	// Paused reports the element's own paused flag.
	Paused() bool
	// ReadyState reports how much of the stream is buffered.
	ReadyState() int
	// Seek moves the playback position, in seconds.
	Seek(seconds float64)
	// SetVolume applies a volume in [0, 1].
	SetVolume(v float64)
	// Position returns the current playback position in seconds.
	Position() float64
	// Duration returns the total stream duration in seconds, 0 if unknown.
	Duration() float64
	// Events returns the element's event stream.
	Events() <-chan Event
	// Close releases element resources and closes the event stream.
	Close() error
}
