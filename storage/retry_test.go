package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyUploader struct {
	failures int
	calls    int
	lastBody string
}

func (f *flakyUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*UploadResult, error) {
	f.calls++
	body, _ := io.ReadAll(reader)
	f.lastBody = string(body)
	if f.calls <= f.failures {
		return nil, errors.New("rate limited")
	}
	return &UploadResult{Key: key}, nil
}

func (f *flakyUploader) Delete(context.Context, string) error { return nil }
func (f *flakyUploader) GetPublicURL(string) string           { return "" }

func TestRetryingUploader(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("succeeds after transient failures", func(t *testing.T) {
		inner := &flakyUploader{failures: 2}
		up := NewRetryingUploader(inner, 4, time.Millisecond, logger)
		result, err := up.Upload(context.Background(), "k", "text/csv", strings.NewReader("data"))
		require.NoError(t, err)
		assert.Equal(t, "k", result.Key)
		assert.Equal(t, 3, inner.calls)
		assert.Equal(t, "data", inner.lastBody, "each attempt re-reads the full payload")
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		inner := &flakyUploader{failures: 10}
		up := NewRetryingUploader(inner, 3, time.Millisecond, logger)
		_, err := up.Upload(context.Background(), "k", "text/csv", strings.NewReader("data"))
		require.Error(t, err)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		inner := &flakyUploader{failures: 10}
		up := NewRetryingUploader(inner, 5, time.Hour, logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := up.Upload(ctx, "k", "text/csv", strings.NewReader("data"))
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, inner.calls)
	})
}
