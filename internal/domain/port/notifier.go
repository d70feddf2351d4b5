package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, jobID string, videoName string, errorMsg string) error
}
