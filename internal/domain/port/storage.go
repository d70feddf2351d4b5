package port

import (
	"context"
	"io"
)

// ResultStorage uploads a finished result archive to object storage.
type ResultStorage interface {
	UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
