package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts:    3,
		initialBackoff: time.Millisecond,
		maxBackoff:     5 * time.Millisecond,
		multiplier:     2.0,
	}
}

func TestWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	var calls int
	got, err := withRetry(context.Background(), fastRetryPolicy(), "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &apiStatusError{status: 503, body: "busy"}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	var calls int
	_, err := withRetry(context.Background(), fastRetryPolicy(), "test", func(ctx context.Context) (string, error) {
		calls++
		return "", &apiStatusError{status: 401, body: "unauthorized"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := withRetry(context.Background(), fastRetryPolicy(), "test", func(ctx context.Context) (string, error) {
		calls++
		return "", &apiStatusError{status: 503, body: "busy"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	_, err := withRetry(ctx, fastRetryPolicy(), "test", func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", &apiStatusError{status: 503, body: "busy"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(&apiStatusError{status: 429}))
	assert.True(t, retryable(&apiStatusError{status: 503}))
	assert.False(t, retryable(&apiStatusError{status: 400}))
	assert.False(t, retryable(&apiStatusError{status: 401}))
	assert.False(t, retryable(errors.New("parse error")))
	assert.False(t, retryable(nil))
}

func TestBackoff_CappedAtMax(t *testing.T) {
	p := retryPolicy{
		initialBackoff: time.Second,
		maxBackoff:     2 * time.Second,
		multiplier:     10.0,
	}
	assert.Equal(t, 2*time.Second, p.backoff(5))
}

func TestMistralOCR_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"pages":[{"index":0,"markdown":"Recovered content"}]}`))
	}))
	defer srv.Close()

	pdfPath := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 test"), 0644))

	m := NewMistralOCR("test-key", "test-model", 0)
	m.endpoint = srv.URL
	m.retry = fastRetryPolicy()

	doc, err := m.Extract(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, doc.Text, "Recovered content")
}
