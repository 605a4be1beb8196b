package port

import (
	"context"
	"io"
)

type VideoStorage interface {
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
	// UploadPreview stores a slide still and returns the object key it was
	// stored under.
	UploadPreview(ctx context.Context, objectKey string, filePath string) (string, error)
	UploadDocument(ctx context.Context, objectKey string, contentType string, reader io.Reader, size int64) error
}
