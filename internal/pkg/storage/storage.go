package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

type FileStorage interface {
	// Upload uploads a file and returns the file path/key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// GetURL generates a presigned/public URL
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}

// Artifact key prefixes
const (
	SavedReportsPrefix = "saved-reports"
	PDFPrefix          = "pdf"
	ScreenshotsPrefix  = "screenshots"
)

// PutBytes uploads data under path.
func PutBytes(ctx context.Context, s FileStorage, path string, data []byte, contentType string) (string, error) {
	return s.Upload(ctx, bytes.NewReader(data), path, contentType)
}

// ReadAll downloads the whole object at path.
func ReadAll(ctx context.Context, s FileStorage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
