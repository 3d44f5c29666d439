// Package fetch provides the HTTP client used for tile and metadata fetches.
//
// This package handles:
//   - Connection pooling for parallel tile downloads
//   - Browser-like User-Agent and Referer headers (some tile servers
//     refuse anything else)
//   - Status-code classification into sentinel errors
//
// # Usage
//
//	client := fetch.NewClient(fetch.DefaultOptions())
//
//	body, err := client.Get(ctx, tileURL)
//	if errors.Is(err, fetch.ErrNotFound) {
//	    // tile does not exist on the server; skip it
//	}
//	defer body.Close()
//
// There is intentionally no retry: a failed tile fetch permanently excludes
// that tile from the composite.
package fetch
