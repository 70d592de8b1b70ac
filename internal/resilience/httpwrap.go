package resilience

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps an http.Client with retry, timeout and circuit-breaker logic.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
}

// Do executes the request applying retry semantics. The request body is
// buffered so attempts can be replayed. 5xx responses count as failures.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	breaker := cl.Breaker
	if breaker == nil {
		breaker = NewBreaker(1, 1, time.Second)
	}
	maxAttempts := cl.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if !breaker.Allow() {
			lastErr = ErrOpenCircuit
			break
		}
		attemptReq := req.Clone(ctx)
		if body != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
		}
		resp, err := cl.doOnce(ctx, attemptReq)
		if err == nil && resp.StatusCode < 500 {
			breaker.Report(true)
			return resp, nil
		}
		if err == nil {
			lastErr = errors.New(resp.Status)
			_ = resp.Body.Close()
		} else {
			lastErr = err
		}
		breaker.Report(false)
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(Backoff(cl.BaseBackoff, attempt, cl.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (cl HTTPClient) doOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	resp, err := cl.Client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	// Drain the body before the per-attempt context is cancelled so callers
	// can read it at their leisure.
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}
