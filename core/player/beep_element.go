package player

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const speakerSampleRate = beep.SampleRate(44100)

// BeepElement is an Element backed by local audio output. It fetches the
// source URL into memory, decodes it as MP3, and plays through the speaker.
// Used by the play CLI command; the engine treats it like any other element.
type BeepElement struct {
	mu sync.Mutex

	src         string
	client      *http.Client
	events      chan Event
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	ready    int
	ended    bool

	// loadSeq lets a newer Load invalidate the fetch goroutine and end
	// callback of a superseded one.
	loadSeq uint64

	closeOnce  sync.Once
	done       chan struct{}
	tickerOnce sync.Once
}

// NewBeepElement creates a speaker-backed media element.
func NewBeepElement() *BeepElement {
	return &BeepElement{
		client: &http.Client{Timeout: 60 * time.Second},
		events: make(chan Event, 32),
		done:   make(chan struct{}),
	}
}

func (b *BeepElement) emit(ev Event) {
	select {
	case b.events <- ev:
	default:
		// Channel full, drop to avoid blocking the audio path.
	}
}

// SetSource assigns the stream URL for the next Load.
func (b *BeepElement) SetSource(url string) {
	b.mu.Lock()
	b.src = url
	b.mu.Unlock()
}

// Load fetches and decodes the current source asynchronously, reporting
// progress through events.
func (b *BeepElement) Load() {
	b.mu.Lock()
	b.loadSeq++
	seq := b.loadSeq
	src := b.src
	b.stopLocked()
	b.ready = ReadyNothing
	b.ended = false
	b.mu.Unlock()

	b.emit(Event{Type: EventLoadStart})

	go func() {
		data, err := b.fetch(src)
		if err != nil {
			b.failLoad(seq, err)
			return
		}

		streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			b.failLoad(seq, fmt.Errorf("failed to decode stream: %w", err))
			return
		}

		b.mu.Lock()
		if seq != b.loadSeq {
			b.mu.Unlock()
			streamer.Close()
			return
		}
		b.streamer = streamer
		b.format = format
		b.ready = ReadyEnough
		duration := format.SampleRate.D(streamer.Len()).Seconds()
		b.mu.Unlock()

		b.emit(Event{Type: EventLoadedMetadata, Duration: duration})
		b.emit(Event{Type: EventCanPlay})
	}()
}

func (b *BeepElement) fetch(url string) ([]byte, error) {
	resp, err := b.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stream fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream body: %w", err)
	}
	return data, nil
}

func (b *BeepElement) failLoad(seq uint64, err error) {
	b.mu.Lock()
	stale := seq != b.loadSeq
	b.mu.Unlock()
	if !stale {
		b.emit(Event{Type: EventError, Err: err})
	}
}

// Play starts or resumes output. The play event is emitted once the
// speaker is actually driving the stream.
func (b *BeepElement) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return fmt.Errorf("no stream loaded")
	}

	if !b.initialized {
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("failed to init speaker: %w", err)
		}
		b.initialized = true
	}

	if b.ctrl != nil {
		// Resume a paused stream.
		speaker.Lock()
		b.ctrl.Paused = false
		speaker.Unlock()
		b.emit(Event{Type: EventPlay})
		return nil
	}

	resampled := beep.Resample(4, b.format.SampleRate, speakerSampleRate, b.streamer)
	b.ctrl = &beep.Ctrl{Streamer: resampled, Paused: false}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2, Volume: 0, Silent: false}

	seq := b.loadSeq
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with its lock held; take b.mu on
		// a separate goroutine to keep lock order consistent with Pause
		// and Seek.
		go func() {
			b.mu.Lock()
			stale := seq != b.loadSeq
			if !stale {
				b.ended = true
			}
			b.mu.Unlock()
			if !stale {
				b.emit(Event{Type: EventEnded})
			}
		}()
	})))

	b.startTicker()
	b.emit(Event{Type: EventPlay})
	return nil
}

// startTicker emits periodic position updates while a stream is playing.
func (b *BeepElement) startTicker() {
	b.tickerOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-b.done:
					return
				case <-ticker.C:
					if !b.Paused() {
						b.emit(Event{Type: EventTimeUpdate, Position: b.Position()})
					}
				}
			}
		}()
	})
}

// Pause pauses output.
func (b *BeepElement) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
	b.emit(Event{Type: EventPause})
}

// Paused reports whether output is currently paused or stopped.
func (b *BeepElement) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil || b.ended {
		return true
	}
	speaker.Lock()
	paused := b.ctrl.Paused
	speaker.Unlock()
	return paused
}

// ReadyState reports buffering state: everything or nothing, since the
// element fetches whole payloads.
func (b *BeepElement) ReadyState() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Seek moves the stream position.
func (b *BeepElement) Seek(seconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	samples := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if samples < 0 {
		samples = 0
	}
	if samples > b.streamer.Len() {
		samples = b.streamer.Len()
	}
	b.streamer.Seek(samples)
}

// SetVolume maps [0, 1] onto the logarithmic volume effect, muting at 0.
func (b *BeepElement) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.volume == nil {
		return
	}
	speaker.Lock()
	b.volume.Silent = v <= 0
	b.volume.Volume = v*2 - 2 // 1.0 -> 0 dB offset, 0.5 -> -1
	speaker.Unlock()
}

// Position returns the current position in seconds.
func (b *BeepElement) Position() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(pos).Seconds()
}

// Duration returns the total stream duration in seconds.
func (b *BeepElement) Duration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len()).Seconds()
}

// Events returns the element's event stream.
func (b *BeepElement) Events() <-chan Event {
	return b.events
}

// stopLocked tears down the current stream. Caller holds b.mu.
func (b *BeepElement) stopLocked() {
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	b.volume = nil
}

// Close releases the element.
func (b *BeepElement) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.loadSeq++
		b.stopLocked()
		b.mu.Unlock()
		close(b.done)
	})
	return nil
}
