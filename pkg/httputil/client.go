package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/observability"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// DoJSON sends req with c and decodes a successful JSON response into out.
// A nil out discards the body. Failures are classified as described in the
// package documentation.
func DoJSON(ctx context.Context, c *http.Client, req *http.Request, out any) error {
	if c == nil {
		c = http.DefaultClient
	}
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return errs.Wrap(errs.ErrCodeTimeout, err, "%s %s", req.Method, host)
		}
		return Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "%s %s", req.Method, host))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode response from %s", host)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	host := resp.Request.URL.Host

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errs.New(errs.ErrCodeUnauthorized, "%s: %s", host, resp.Status)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return Retryable(&errs.RateLimitedError{RetryAfter: retryAfter, Message: string(body)})
	case code >= 500:
		return Retryable(errs.New(errs.ErrCodeNetwork, "%s: %s: %s", host, resp.Status, body))
	default:
		return errs.New(errs.ErrCodeFetchFailed, "%s: %s: %s", host, resp.Status, body)
	}
}
