package storage

import (
	"context"
	"fmt"
	"time"
)

// BucketStats aggregates usage for a bucket or prefix.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// Stats aggregates object count, size, and most recent modification under a
// prefix. Used by the storage CLI to spot orphaned uploads.
func (s *Store) Stats(ctx context.Context, prefix string) (*BucketStats, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	stats := &BucketStats{}
	for _, object := range objects {
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
	}
	return stats, nil
}

// PrintStatus writes a human-readable summary of the bucket contents under a
// prefix to stdout.
func (s *Store) PrintStatus(ctx context.Context, prefix string) error {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}

	var totalSize int64
	var lastModified time.Time
	for _, object := range objects {
		totalSize += object.Size
		if object.LastModified.After(lastModified) {
			lastModified = object.LastModified
		}
	}

	fmt.Printf("Bucket: %s\n", s.bucket)
	if prefix != "" {
		fmt.Printf("Prefix: %s\n", prefix)
	}
	fmt.Printf("Objects: %d\n", len(objects))
	fmt.Printf("Total size: %s\n", FormatSize(totalSize))
	if !lastModified.IsZero() {
		fmt.Printf("Last modified: %s\n", lastModified.Format(time.RFC3339))
	}

	fmt.Println("\nObjects:")
	for _, object := range objects {
		fmt.Printf("  %s  %s  %s\n",
			object.Key,
			FormatSize(object.Size),
			object.LastModified.Format(time.RFC3339))
	}
	return nil
}

// DeletePrefix removes every object under a prefix. Intended for operator
// cleanup of orphaned uploads; track deletion goes through the track service.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	paths := make([]string, 0, len(objects))
	for _, object := range objects {
		paths = append(paths, object.Key)
	}

	if err := s.Remove(ctx, paths); err != nil {
		return 0, err
	}
	return len(paths), nil
}

// FormatSize renders a byte count with a binary unit suffix.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
