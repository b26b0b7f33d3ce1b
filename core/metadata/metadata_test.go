package metadata

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		wantArtist string
		wantTitle  string
	}{
		{"artist and title", "1699999999_Artist - Title.mp3", "Artist", "Title"},
		{"bare title", "1699999999_justtitle.mp3", "Unknown Artist", "justtitle"},
		{"no timestamp prefix", "Artist - Title.mp3", "Artist", "Title"},
		{"multiple separators", "Artist - Title - Remix.mp3", "Artist", "Title - Remix"},
		{"no extension", "Artist - Title", "Artist", "Title"},
		{"whitespace around parts", "1700000000_ Artist  -  Title .mp3", "Artist", "Title"},
		{"hyphen without spaces is not a separator", "Artist-Title.mp3", "Unknown Artist", "Artist-Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title := Extract(tt.filename)
			if artist != tt.wantArtist || title != tt.wantTitle {
				t.Errorf("Extract(%q) = (%q, %q), want (%q, %q)",
					tt.filename, artist, title, tt.wantArtist, tt.wantTitle)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{61.7, "1:01"},
		{600, "10:00"},
		{-5, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
