// internal/inference/client_test.go
package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
)

func testPolicy() config.InferenceConfig {
	return config.InferenceConfig{
		MaxAttempts: 3,
		BackoffBase: 10, // milliseconds, keep retries fast in tests
		MaxWait:     60000,
	}
}

func testRequest(url string) Request {
	return Request{
		Endpoint:    "test",
		URL:         url,
		Body:        []byte(`{"input":"hello"}`),
		ContentType: "application/json",
		Timeout:     5 * time.Second,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_Call_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "Bearer", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.True(t, outcome.Success())
	assert.JSONEq(t, `{"ok":true}`, string(outcome.Body))
}

func TestClient_Call_MissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient("", "Bearer", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.False(t, outcome.Success())
	assert.Equal(t, errors.ErrCodeConfigError, outcome.Err.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no request should leave the process")
}

func TestClient_Call_RateLimitExhaustsAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", "Bearer", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.False(t, outcome.Success())
	assert.Equal(t, errors.ErrCodeRateLimitExceeded, outcome.Err.Code)
	assert.False(t, outcome.Err.Retryable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "exactly maxAttempts requests")
}

func TestClient_Call_RateLimitThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "Bearer", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.True(t, outcome.Success())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Call_LoadingThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"estimated_time": 0.01}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	policy := testPolicy()
	policy.MaxWait = 100 // caps the warm-up wait so the test stays fast

	client := NewClient("test-key", "Bearer", policy, logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.True(t, outcome.Success())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Call_LoadingEstimateAboveCapFailsImmediately(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"estimated_time": 120}`))
	}))
	defer server.Close()

	policy := testPolicy()
	policy.MaxWait = 60000

	client := NewClient("test-key", "Bearer", policy, logger.NewTestLogger(t))

	start := time.Now()
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.False(t, outcome.Success())
	assert.Equal(t, errors.ErrCodeLoadingTimeout, outcome.Err.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry when the wait would exceed the cap")
	assert.Less(t, time.Since(start), time.Second, "must fail without sleeping")
}

func TestClient_Call_APIError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient("test-key", "Bearer", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), testRequest(server.URL))

	require.False(t, outcome.Success())
	assert.Equal(t, errors.ErrCodeAPIError, outcome.Err.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "non-retryable status gets no retry")
}

func TestClient_Call_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	policy := testPolicy()
	policy.BackoffBase = 10000 // long enough that cancellation wins

	client := NewClient("test-key", "Bearer", policy, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome := client.Call(ctx, testRequest(server.URL))

	require.False(t, outcome.Success())
	assert.Equal(t, errors.ErrCodeTimeout, outcome.Err.Code)
	assert.Less(t, time.Since(start), 2*time.Second, "cancellation must interrupt the backoff sleep")
}

func TestClient_Call_QueryParamsForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	req := testRequest(server.URL)
	req.Query = map[string][]string{"model": {"nova-2"}}

	client := NewClient("test-key", "Token", testPolicy(), logger.NewTestLogger(t))
	outcome := client.Call(context.Background(), req)

	assert.True(t, outcome.Success())
}
