// Package httputil downloads remote street map images.
//
// # Overview
//
// The render and serve commands accept http(s) URLs as image sources. This
// package provides the pieces needed to fetch them reliably:
//
//   - [Fetcher]: GET with size limit, content-type check and retry
//   - [Cache]: file-based cache of downloaded bodies
//   - [Retry]: exponential backoff for transient failures
//
// # Fetching
//
//	f := httputil.NewFetcher(httputil.WithCache(cache))
//	body, err := f.Fetch(ctx, "https://example.org/map.png")
//
// Network errors, 5xx responses and 429 are retried. Other 4xx responses and
// non-image content types fail immediately.
//
// # Caching
//
// [Cache] stores bodies under ~/.cache/roadreveal/downloads/ keyed by the
// SHA-256 of the URL. Entries older than the TTL are reported as
// [ErrExpired] and refetched.
package httputil
