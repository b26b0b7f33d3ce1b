package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"standard watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no www", "https://youtube.com/watch?v=abc123", "abc123"},
		{"mobile", "https://m.youtube.com/watch?v=abc123", "abc123"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch path without v param", "https://www.youtube.com/watch", ""},
		{"wrong path", "https://www.youtube.com/playlist?list=x", ""},
		{"short link without id", "https://youtu.be/", ""},
		{"unrelated host", "https://vimeo.com/12345", ""},
		{"not a url", "::::", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.url); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"Video unavailable", ErrVideoUnavailable},
		{"Sign in to confirm your age", ErrAgeRestricted},
		{"This video is not available", ErrRegionBlocked},
		{"Private video", ErrPrivateVideo},
		{"Sign in to confirm you're not a bot", ErrBotCheck},
		{"some transient network thing", nil},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.message); !errors.Is(got, tt.want) {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func newResolver(t *testing.T, duration int, payload []byte, infoErr string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		if infoErr != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": infoErr})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"title":    "Some Title",
			"author":   "Some Artist",
			"duration": duration,
		})
	})
	mux.HandleFunc("/audio", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	return httptest.NewServer(mux)
}

func TestFetchHappyPath(t *testing.T) {
	payload := make([]byte, 1024)
	server := newResolver(t, 180, payload, "")
	defer server.Close()

	client := NewClient(server.URL, 10*time.Second, 600*time.Second, 7<<20)
	result, err := client.Fetch(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.Title != "Some Title" || result.Artist != "Some Artist" {
		t.Errorf("metadata = %q / %q", result.Title, result.Artist)
	}
	if result.Duration != 180 {
		t.Errorf("Duration = %d, want 180", result.Duration)
	}
	if result.Size != 1024 || len(result.Data) != 1024 {
		t.Errorf("payload size = %d, want 1024", result.Size)
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	client := NewClient("http://resolver.invalid", time.Second, 600*time.Second, 7<<20)
	_, err := client.Fetch(context.Background(), "https://example.com/watch?v=x")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
}

func TestFetchRejectsLongVideosBeforeDownload(t *testing.T) {
	downloaded := false
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"title": "Long", "author": "A", "duration": 601,
		})
	})
	mux.HandleFunc("/audio", func(w http.ResponseWriter, r *http.Request) {
		downloaded = true
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, 10*time.Second, 600*time.Second, 7<<20)
	_, err := client.Fetch(context.Background(), "https://youtu.be/abc123")
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("err = %v, want ErrTooLong", err)
	}
	if downloaded {
		t.Error("payload transfer attempted despite duration cap")
	}
}

func TestFetchRejectsOversizedPayload(t *testing.T) {
	payload := make([]byte, 2048)
	server := newResolver(t, 120, payload, "")
	defer server.Close()

	client := NewClient(server.URL, 10*time.Second, 600*time.Second, 1024)
	_, err := client.Fetch(context.Background(), "https://youtu.be/abc123")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestFetchClassifiesUpstreamErrors(t *testing.T) {
	server := newResolver(t, 0, nil, "Video unavailable")
	defer server.Close()

	client := NewClient(server.URL, 10*time.Second, 600*time.Second, 7<<20)
	_, err := client.Fetch(context.Background(), "https://youtu.be/abc123")
	if !errors.Is(err, ErrVideoUnavailable) {
		t.Errorf("err = %v, want ErrVideoUnavailable", err)
	}
}
