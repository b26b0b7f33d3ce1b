// Package ingest acquires audio payloads from external video sources.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"soundcrate/logger"
)

// Result carries a fetched audio payload and its synthesized metadata.
type Result struct {
	Title    string
	Artist   string
	Duration int // seconds
	Data     []byte
	Size     int64
}

// Fetcher converts a source URL into an in-memory audio payload.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (*Result, error)
}

// videoInfo is the resolver's metadata response.
type videoInfo struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Duration int    `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// Client implements Fetcher against an audio resolver service. Duration is
// checked against the cap before the payload transfer; payload size is
// checked after.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxDuration time.Duration
	maxBytes    int64
}

// NewClient creates a resolver-backed Fetcher.
func NewClient(baseURL string, timeout, maxDuration time.Duration, maxBytes int64) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		maxDuration: maxDuration,
		maxBytes:    maxBytes,
	}
}

// Fetch validates the source URL, checks metadata against the duration cap,
// then transfers and size-checks the audio payload.
func (c *Client) Fetch(ctx context.Context, sourceURL string) (*Result, error) {
	videoID := ExtractVideoID(sourceURL)
	if videoID == "" {
		return nil, ErrInvalidURL
	}

	info, err := c.getInfo(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if time.Duration(info.Duration)*time.Second > c.maxDuration {
		return nil, fmt.Errorf("%w: %ds exceeds the %s cap", ErrTooLong,
			info.Duration, c.maxDuration)
	}

	logger.Info("[Ingest] downloading audio",
		logger.String("videoId", videoID),
		logger.String("title", info.Title),
		logger.Int("duration", info.Duration))

	data, err := c.download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte cap", ErrTooLarge,
			len(data), c.maxBytes)
	}

	artist := info.Author
	if artist == "" {
		artist = "Unknown Artist"
	}

	return &Result{
		Title:    info.Title,
		Artist:   artist,
		Duration: info.Duration,
		Data:     data,
		Size:     int64(len(data)),
	}, nil
}

// getInfo fetches video metadata from the resolver.
func (c *Client) getInfo(ctx context.Context, sourceURL string) (*videoInfo, error) {
	body, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal info request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build info request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver info request failed: %w", err)
	}
	defer resp.Body.Close()

	var info videoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode resolver info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || info.Error != "" {
		if typed := ClassifyError(info.Error); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("resolver error: %s", info.Error)
	}

	return &info, nil
}

// download transfers the audio payload from the resolver.
func (c *Client) download(ctx context.Context, sourceURL string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"url": sourceURL, "format": "mp3"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal download request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if typed := ClassifyError(string(msg)); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("resolver download returned status %d", resp.StatusCode)
	}

	// The payload cap bounds the read; one extra byte detects overflow
	// without buffering an unbounded stream.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio payload: %w", err)
	}
	return data, nil
}
