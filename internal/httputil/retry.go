// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the source adapters.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether a response status warrants another attempt.
// HTTP 429 and 5xx are retryable; other 4xx responses (bad query, blocked
// key) are final and returned to the caller unchanged.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries on transient failures:
// network errors, HTTP 429, and HTTP 5xx. The delay starts at RetryBaseDelay
// and doubles each attempt. When maxRetries is 0 the default (3) is used.
//
// On each retryable response the body is drained and closed before sleeping.
// Requests with a body must carry GetBody so retries can resend it; requests
// built with http.NewRequestWithContext from an in-memory reader do.
// If the context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last response (or last network
// error) is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}
		resp, err := client.Do(attemptReq)
		if err == nil && !Retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries — hand back whatever we last saw.
		if attempt >= maxRetries {
			return resp, err
		}

		if err == nil {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
