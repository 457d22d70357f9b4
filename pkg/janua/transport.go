package janua

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// requestOptions tunes a single pipeline invocation.
type requestOptions struct {
	// skipAuth sends the request without resolving an Authorization
	// header, used for login, refresh and other pre-auth endpoints.
	skipAuth bool

	// query is appended to the path verbatim (already encoded).
	query string
}

// do executes one logical API call: auth-header resolution, the request
// itself, error classification, and bounded retry with exponential backoff.
// out, when non-nil, receives the decoded 2xx JSON body.
//
// Only the final typed error (or final success) escapes; intermediate
// attempts are visible to callers solely as latency.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, opts requestOptions) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &ConfigurationError{Message: fmt.Sprintf("marshal %s %s request: %v", method, path, err)}
		}
	}

	requestID := ulid.Make().String()
	timer := prometheus.NewTimer(c.metrics.RequestDuration.WithLabelValues(method))
	defer timer.ObserveDuration()

	attempts := c.cfg.Retry.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	refreshedAfter401 := false

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay(attempt-1, lastErr)
			c.metrics.RetriesTotal.WithLabelValues(retryReason(lastErr)).Inc()
			if c.cfg.Debug {
				c.log.Debug("retrying request",
					"method", method, "path", path, "request_id", requestID,
					"attempt", attempt+1, "delay", delay, "cause", lastErr)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return &NetworkError{Err: err}
			}
		}

		err := c.attempt(ctx, method, path, payload, out, opts, requestID)
		if err == nil {
			c.metrics.RequestsTotal.WithLabelValues(method, "ok").Inc()
			return nil
		}
		lastErr = err

		// A 401 marks the stored token stale so the next attempt's header
		// resolution performs a refresh. It rides the generic retry loop
		// rather than a dedicated path, but a second 401 after a refresh
		// already happened means the refreshed token was rejected too, and
		// retrying further cannot help.
		var authErr *AuthenticationError
		if errors.As(err, &authErr) && !opts.skipAuth {
			if refreshedAfter401 || !c.tokens.IsAuthenticated(ctx) {
				break
			}
			refreshedAfter401 = true
			c.tokens.Invalidate(ctx)
			continue
		}

		if !c.retryable(err) {
			break
		}
	}

	c.metrics.RequestsTotal.WithLabelValues(method, errorStatusLabel(lastErr)).Inc()
	return lastErr
}

// attempt performs one HTTP exchange and classifies the outcome.
func (c *Client) attempt(
	ctx context.Context,
	method, path string,
	payload []byte,
	out any,
	opts requestOptions,
	requestID string,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Err: err}
		}
	}

	// The auth header is resolved on every attempt, not once per logical
	// request: a 401 on the previous attempt may have invalidated the
	// token, and resolution here is what heals it.
	var authHeader string
	if !opts.skipAuth {
		header, err := c.tokens.AuthorizationHeader(ctx)
		if err != nil {
			return err
		}
		authHeader = header
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := c.baseURL + path
	if opts.query != "" {
		url += "?" + opts.query
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, reqBody)
	if err != nil {
		return &ConfigurationError{Message: fmt.Sprintf("build %s %s request: %v", method, path, err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	if c.cfg.Debug {
		c.log.Debug("sending request", "method", method, "path", path, "request_id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp, respBody)
	}

	// Transport success is not operation success: the API signals some
	// application-level failures inside a 2xx envelope.
	if appErr := classifyAppError(respBody); appErr != nil {
		return appErr
	}

	if out != nil && len(respBody) > 0 && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &ServerError{APIError: APIError{
				StatusCode: resp.StatusCode,
				Code:       ErrorCodeServerError,
				Message:    fmt.Sprintf("malformed response body: %v", err),
			}}
		}
	}

	return nil
}

// retryDelay computes the wait before the next attempt. retryIndex is
// zero-based: the delay before the first retry is the initial delay. A
// reasonable Retry-After hint from a 429 overrides the schedule.
func (c *Client) retryDelay(retryIndex int, lastErr error) time.Duration {
	var rateErr *RateLimitError
	if errors.As(lastErr, &rateErr) &&
		rateErr.RetryAfter > 0 && rateErr.RetryAfter <= maxRetryAfterHint {
		return rateErr.RetryAfter
	}

	delay := time.Duration(
		float64(c.cfg.Retry.InitialDelay) * math.Pow(c.cfg.Retry.BackoffFactor, float64(retryIndex)),
	)
	if delay > c.cfg.Retry.MaxDelay {
		delay = c.cfg.Retry.MaxDelay
	}
	return delay
}

// retryable reports whether err is worth another attempt under the
// configured policy. Network failures always are; status-derived errors
// consult the configured retryable set.
func (c *Client) retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	status := statusCodeOf(err)
	if status == 0 {
		return false
	}
	for _, code := range c.cfg.Retry.RetryOnStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

// retryReason labels a retry trigger for metrics.
func retryReason(err error) string {
	switch err.(type) {
	case *NetworkError:
		return "network"
	case *RateLimitError:
		return "rate_limit"
	case *AuthenticationError:
		return "auth"
	default:
		return "server_error"
	}
}

// errorStatusLabel labels a terminal error outcome for metrics.
func errorStatusLabel(err error) string {
	if status := statusCodeOf(err); status != 0 {
		return strconv.Itoa(status)
	}
	if _, ok := err.(*NetworkError); ok {
		return "network_error"
	}
	return "error"
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
