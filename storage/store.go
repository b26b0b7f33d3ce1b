package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"soundcrate/config"

	"github.com/minio/minio-go/v7"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Store wraps the MinIO client with the bucket-scoped operations the track
// workflows need.
type Store struct {
	client *minio.Client
	bucket string
	cfg    *config.Config
}

// NewStore creates a Store over the shared MinIO client.
func NewStore(cfg *config.Config) (*Store, error) {
	client := GetMinioClient()
	if client == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}
	return &Store{client: client, bucket: cfg.MinioBucket, cfg: cfg}, nil
}

// Upload writes a payload to the given object key.
func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	if !upsert {
		// MinIO has no native no-overwrite put; reject when the key exists.
		_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
		if err == nil {
			return fmt.Errorf("object already exists at %s", path)
		}
		if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
			return fmt.Errorf("failed to stat object %s: %w", path, err)
		}
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", path, err)
	}
	return nil
}

// Remove deletes the given object keys. The first failure aborts and is
// returned; earlier removals are not undone.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		objectsCh <- minio.ObjectInfo{Key: p}
	}
	close(objectsCh)

	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			return fmt.Errorf("failed to remove object %s: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return nil
}

// SignedURL issues a time-limited presigned GET URL for an object.
func (s *Store) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", path, err)
	}
	return u.String(), nil
}

// PublicURL returns the unauthenticated URL for an object. It only resolves
// to readable content when the bucket policy allows anonymous reads.
func (s *Store) PublicURL(path string) string {
	scheme := "http"
	if s.cfg.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinioEndpoint, s.bucket, path)
}

// List returns the objects under a prefix, oldest first.
func (s *Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}

	return objects, nil
}
