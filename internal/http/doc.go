// Package http provides the HTTP client used to fetch SoundCloud pages,
// script bundles, API documents, HLS manifests, media segments and artwork.
//
// The Client in this package handles:
//   - User-Agent headers for SoundCloud compatibility
//   - Timeout handling
//   - Optional request throttling
//   - Uniform transport errors (ErrTransport, *StatusError)
//
// # Basic Usage
//
//	client := http.NewClient(http.ClientConfig{})
//
//	// Fetch HTML page
//	html, err := client.Get(ctx, "https://soundcloud.com/artist/track")
//	if errors.Is(err, http.ErrTransport) {
//	    // network or status failure, retry at your discretion
//	}
package http
