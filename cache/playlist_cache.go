package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soundcrate/model"
)

// playlistTTL bounds how long a stale snapshot can outlive its session.
const playlistTTL = 24 * time.Hour

// PlaylistItem is the cached projection of a playlist entry.
type PlaylistItem struct {
	TrackID  int64  `json:"trackId"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Position int    `json:"position"`
}

// PlaylistCache stores per-user playlist snapshots in Redis sorted sets,
// scored by position.
type PlaylistCache struct {
	client *redis.Client
}

// NewPlaylistCache creates a PlaylistCache over the given client.
func NewPlaylistCache(client *redis.Client) *PlaylistCache {
	return &PlaylistCache{client: client}
}

func playlistKey(userID int64) string {
	return fmt.Sprintf("playlist:%d", userID)
}

// Replace overwrites the user's cached playlist with the given tracks,
// preserving their order.
func (c *PlaylistCache) Replace(ctx context.Context, userID int64, tracks []model.Track) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := playlistKey(userID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	if len(tracks) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(tracks))
	for i, track := range tracks {
		item := PlaylistItem{
			TrackID:  track.ID,
			Title:    track.Title,
			Artist:   track.Artist,
			Position: i,
		}
		if track.Duration != nil {
			item.Duration = *track.Duration
		}
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal playlist item: %w", err)
		}
		members = append(members, redis.Z{Score: float64(i), Member: itemJSON})
	}

	if err := c.client.ZAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if err := c.client.Expire(ctx, key, playlistTTL).Err(); err != nil {
		return fmt.Errorf("failed to set playlist expiration: %w", err)
	}
	return nil
}

// Get returns the user's cached playlist in position order.
func (c *PlaylistCache) Get(ctx context.Context, userID int64) ([]PlaylistItem, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	result, err := c.client.ZRangeByScore(ctx, playlistKey(userID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return []PlaylistItem{}, nil
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	playlist := make([]PlaylistItem, 0, len(result))
	for _, itemJSON := range result {
		var item PlaylistItem
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal playlist item: %w", err)
		}
		playlist = append(playlist, item)
	}

	return playlist, nil
}

// Clear drops the user's cached playlist.
func (c *PlaylistCache) Clear(ctx context.Context, userID int64) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := c.client.Del(ctx, playlistKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	return nil
}
