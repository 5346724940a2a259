package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// retryingUploader wraps a FileUploader with exponential backoff for
// transient failures (rate limits, network blips). The payload is buffered
// once so each attempt gets a fresh reader.
type retryingUploader struct {
	inner     FileUploader
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

func NewRetryingUploader(inner FileUploader, attempts int, baseDelay time.Duration, logger *slog.Logger) FileUploader {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingUploader{
		inner:     inner,
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger,
	}
}

func (r *retryingUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("buffer payload for %s: %w", key, err)
	}

	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay << (attempt - 1)
			r.logger.Warn("retrying upload",
				slog.String("key", key),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
				slog.Any("error", lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := r.inner.Upload(ctx, key, contentType, bytes.NewReader(payload))
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("upload %s failed after %d attempts: %w", key, r.attempts, lastErr)
}

func (r *retryingUploader) Delete(ctx context.Context, key string) error {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.baseDelay << (attempt - 1)):
			}
		}
		err := r.inner.Delete(ctx, key)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("delete %s failed after %d attempts: %w", key, r.attempts, lastErr)
}

func (r *retryingUploader) GetPublicURL(key string) string {
	return r.inner.GetPublicURL(key)
}
