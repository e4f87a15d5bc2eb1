// internal/inference/client.go
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultLoadingEstimate = 20.0 // seconds, when a 503 body carries no estimate

// Client is a resilient caller for a single external inference endpoint. It
// retries rate-limit (429) and warm-up (503) responses with bounded backoff
// and resolves every failure path to a typed Outcome; it never panics and
// never returns a raw transport error to its caller.
type Client struct {
	apiKey      string
	authScheme  string // "Bearer" for chat endpoints, "Token" for transcription
	maxAttempts int
	backoffBase time.Duration
	maxWait     time.Duration
	httpClient  *http.Client
	logger      logger.Logger
}

// NewClient builds a client with the shared retry policy. The HTTP client
// carries no timeout of its own; deadlines come from the request context.
func NewClient(apiKey, authScheme string, policy config.InferenceConfig, log logger.Logger) *Client {
	return &Client{
		apiKey:      apiKey,
		authScheme:  authScheme,
		maxAttempts: policy.MaxAttempts,
		backoffBase: config.GetDuration(policy.BackoffBase),
		maxWait:     config.GetDuration(policy.MaxWait),
		httpClient:  &http.Client{},
		logger:      log,
	}
}

// Call executes the request with bounded retries. The attempt counter is
// loop-local state; there is no recursive self-call.
func (c *Client) Call(ctx context.Context, req Request) Outcome {
	if c.apiKey == "" {
		// Fail fast: no network I/O without credentials.
		out := failure(errors.NewConfigError(fmt.Sprintf("endpoint: %s", req.Endpoint)))
		c.recordOutcome(req.Endpoint, out)
		return out
	}

	timer := prometheus.NewTimer(metrics.InferenceDuration.WithLabelValues(req.Endpoint))
	defer timer.ObserveDuration()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	out := c.callLoop(ctx, req)
	c.recordOutcome(req.Endpoint, out)
	return out
}

func (c *Client) callLoop(ctx context.Context, req Request) Outcome {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, req)
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return failure(errors.NewTimeoutError(req.Endpoint))
			}
			return failure(errors.NewNetworkError(req.Endpoint, err))
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return failure(errors.NewNetworkError(req.Endpoint, readErr))
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return Outcome{Body: body}

		case http.StatusTooManyRequests:
			if attempt+1 >= c.maxAttempts {
				return failure(errors.NewRateLimitExceededError(req.Endpoint, c.maxAttempts))
			}
			backoff := c.backoffBase * (1 << attempt)
			c.logger.Warn("rate limited, backing off", map[string]interface{}{
				"endpoint": req.Endpoint,
				"attempt":  attempt + 1,
				"backoff":  backoff.String(),
			})
			metrics.InferenceRetries.WithLabelValues(req.Endpoint, "rate_limited").Inc()
			if !c.sleep(ctx, backoff) {
				return failure(errors.NewTimeoutError(req.Endpoint))
			}

		case http.StatusServiceUnavailable:
			estimated := parseEstimatedWait(body)
			estimatedDur := time.Duration(estimated * float64(time.Second))
			if attempt+1 >= c.maxAttempts || estimatedDur >= c.maxWait {
				return failure(errors.NewLoadingTimeoutError(req.Endpoint, estimated))
			}
			wait := estimatedDur + 2*time.Second
			if wait > c.maxWait {
				wait = c.maxWait
			}
			c.logger.Info("endpoint warming up, waiting", map[string]interface{}{
				"endpoint": req.Endpoint,
				"attempt":  attempt + 1,
				"wait":     wait.String(),
			})
			metrics.InferenceRetries.WithLabelValues(req.Endpoint, "loading").Inc()
			if !c.sleep(ctx, wait) {
				return failure(errors.NewTimeoutError(req.Endpoint))
			}

		default:
			return failure(errors.NewAPIError(req.Endpoint, resp.StatusCode))
		}
	}

	// Loop bound only exits through the cases above; keep the compiler honest.
	return failure(errors.NewRateLimitExceededError(req.Endpoint, c.maxAttempts))
}

// doRequest builds a fresh http.Request per attempt so the body reader is
// never reused across retries.
func (c *Client) doRequest(ctx context.Context, req Request) (*http.Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", c.authScheme+" "+c.apiKey)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	return c.httpClient.Do(httpReq)
}

// sleep blocks for d or until the context is done. Returns false when the
// context won; the call must then resolve to a failed Outcome, not hang.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) recordOutcome(endpoint string, out Outcome) {
	label := "success"
	if out.Err != nil {
		label = string(out.Err.Code)
		c.logger.Error("inference call failed", map[string]interface{}{
			"endpoint": endpoint,
			"code":     out.Err.Code,
			"message":  out.Err.Message,
		})
	}
	metrics.InferenceRequests.WithLabelValues(endpoint, label).Inc()
}

// parseEstimatedWait reads the server-provided warm-up estimate from a 503
// body, defaulting when absent or malformed.
func parseEstimatedWait(body []byte) float64 {
	var payload struct {
		EstimatedTime float64 `json:"estimated_time"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.EstimatedTime <= 0 {
		return defaultLoadingEstimate
	}
	return payload.EstimatedTime
}

func isTimeout(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
