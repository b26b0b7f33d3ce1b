package track

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2/mp3"
)

// MP3Prober derives a duration by decoding the mp3 frame stream.
type MP3Prober struct{}

// Probe returns the payload's duration in whole seconds.
func (MP3Prober) Probe(data []byte) (int, error) {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to decode mp3: %w", err)
	}
	defer streamer.Close()

	if format.SampleRate == 0 {
		return 0, fmt.Errorf("mp3 reports zero sample rate")
	}
	return streamer.Len() / int(format.SampleRate), nil
}
