// Package soundcloud resolves SoundCloud URLs into tracks and playlists and
// rebuilds MP3 files from their HLS streams.
//
// The package handles four main use cases:
//
//  1. Discovering the public client id the web player uses for API calls
//  2. Resolving permalinks into *Track or *Playlist values
//  3. Looking up many tracks by id in batches
//  4. Writing a track's stream into a file and tagging it
//
// # Resolving
//
//	client, err := soundcloud.NewClient(soundcloud.Config{
//	    Fetcher: http.NewClient(http.ClientConfig{}),
//	    Tagger:  audio.NewTagger(nil),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := client.Resolve(ctx, "https://soundcloud.com/user/sets/my-set")
//
// Playlists returned by Resolve are complete: every entry carries a
// materialized *Track.
//
// # Client ID
//
// The catalog API requires a client_id query parameter. It is scraped from
// the script bundles of a public track page the first time it is needed and
// reused afterwards. The id is never refreshed automatically; call
// InvalidateClientID when the API starts answering 401.
//
// # Errors
//
// Failures are classified with errors.Is against ErrDiscovery, ErrResolution,
// ErrUnsupportedKind, ErrLookup, ErrNoStream and ErrSinkMode. Network failures
// keep the fetcher's own error (http.ErrTransport for the default fetcher).
package soundcloud
