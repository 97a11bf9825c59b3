// Package httputil provides the HTTP plumbing used by remote data sources.
//
// # Overview
//
//   - [DoJSON]: send a request, classify the response, decode a JSON body
//   - [Backoff]: retry transient failures with exponential delays
//
// # Response classification
//
// [DoJSON] maps responses onto stormgraph error codes:
//
//   - 2xx: the body is decoded into the destination
//   - 401, 403: UNAUTHORIZED
//   - 429: RATE_LIMITED, retryable
//   - 5xx and transport failures: NETWORK_ERROR, retryable
//   - anything else: FETCH_FAILED
//
// Retryable errors are wrapped in [RetryableError] so that [Backoff.Do]
// attempts the request again:
//
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
//	    return httputil.DoJSON(ctx, client, req, &resp)
//	})
//
// A 429 response waits at least its Retry-After before the next attempt,
// bounded by [Backoff.Max].
package httputil
