package port

import "context"

type Archiver interface {
	CreateArchive(ctx context.Context, dir string, outputPath string) error
}
