// Package metadata derives displayable track metadata from filenames.
package metadata

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const unknownArtist = "Unknown Artist"

var timestampPrefix = regexp.MustCompile(`^\d+_`)

// Extract derives an artist/title pair from an uploaded filename.
//
// The extension and any leading timestamp prefix (as written by the upload
// path namer) are stripped first. A name of the form "Artist - Title" splits
// on the first " - "; anything else becomes the title with artist falling
// back to "Unknown Artist".
func Extract(filename string) (artist, title string) {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = timestampPrefix.ReplaceAllString(name, "")

	parts := strings.Split(name, " - ")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(strings.Join(parts[1:], " - "))
	}
	return unknownArtist, strings.TrimSpace(name)
}

// FormatTime renders a position in seconds as "m:ss" for display.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
