package ingest

import "net/url"

// IsValidYouTubeURL reports whether a URL points at a YouTube video.
// Accepted forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID
//   - https://youtube.com/watch?v=VIDEO_ID
//   - https://m.youtube.com/watch?v=VIDEO_ID
//   - https://youtu.be/VIDEO_ID
func IsValidYouTubeURL(raw string) bool {
	return ExtractVideoID(raw) != ""
}

// ExtractVideoID returns the video ID of a valid YouTube URL, or "".
func ExtractVideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	switch u.Hostname() {
	case "www.youtube.com", "youtube.com", "m.youtube.com":
		if u.Path != "/watch" {
			return ""
		}
		return u.Query().Get("v")
	case "youtu.be":
		if len(u.Path) <= 1 {
			return ""
		}
		return u.Path[1:]
	}
	return ""
}
