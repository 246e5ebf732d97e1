// Package gcs provides an image Store backed by Google Cloud Storage.
// Entry expiry is delegated to the bucket's lifecycle policy rather than
// managed per object.
package gcs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string
}

// Store reads and writes rendered images in a configured GCS bucket.
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a GCS-backed store.
func New(client *storage.Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Get fetches the object for a key. A missing object is a miss, not an
// error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	reader, err := s.client.Bucket(s.bucket).Object(objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open object: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("read object: %w", err)
	}
	return data, true, nil
}

// Put uploads the bytes for a key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	writer := s.client.Bucket(s.bucket).Object(objectName(key)).NewWriter(ctx)
	writer.ContentType = "image/png"
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return fmt.Errorf("write object: %w (close writer: %v)", err, closeErr)
		}
		return fmt.Errorf("write object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// objectName hashes the request URL into a flat object name so keys never
// need escaping.
func objectName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "og-cards/" + hex.EncodeToString(sum[:])
}
